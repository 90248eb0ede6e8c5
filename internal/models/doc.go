// Package models defines the Life Track entities (todos, ideas and
// achievement journal entries) together with the create and partial-update
// requests accepted by the primary and backup stores.
package models
