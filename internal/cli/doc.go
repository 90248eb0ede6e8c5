// Package cli implements the interactive lifetrack shell: sign-in, todos,
// ideas and achievements over the state containers.
package cli
