// Package model contains domain models passed between layers.
package model

// Level is a named horizontal reference plane of the building model.
type Level struct {
	ID        string  // stable identifier, decoupled from any model handle
	Name      string  // display name, e.g. "Second Floor"
	Elevation float64 // decimal feet above datum
}

// PlateChange is one submission of the plate height form.
type PlateChange struct {
	SubmissionID string            // idempotency key for Apply; generated when empty
	Deltas       map[string]string // level id -> text typed into the adjustment box
	Force        bool              // apply even when the order would invert
}
