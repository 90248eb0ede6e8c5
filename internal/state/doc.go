// Package state holds the in-memory collections the CLI renders: one
// container per entity type, each loading from the primary store (falling
// back to the backup service for todos and ideas), applying writes primary
// first, mirroring them to the backup in the background, then reloading.
package state
