// Package model defines the domain data structures shared across the app:
// transfer tasks, multipart resume state, derived queue/statistics views and
// the status enum with its transition table. Structures are plain values so
// they can be copied out to the UI and serialized for persistence.
package model
