// Package types contains common types used across the application
package types

import (
	"github.com/okian/platechanges/internal/domain/elevation"
	"github.com/okian/platechanges/internal/domain/model"
	"github.com/okian/platechanges/internal/domain/ordering"
)

// Level is the read shape of a building level.
type Level struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Elevation float64 `json:"elevation"`
	Display   string  `json:"display"`
}

// NewLevel converts a model level, rendering its elevation.
func NewLevel(l model.Level) Level {
	return Level{
		ID:        l.ID,
		Name:      l.Name,
		Elevation: l.Elevation,
		Display:   elevation.Format(l.Elevation),
	}
}

// Violation describes one inverted pair of levels.
type Violation struct {
	LowerID   string  `json:"lower_id"`
	LowerName string  `json:"lower_name"`
	LowerNew  float64 `json:"lower_new"`
	UpperID   string  `json:"upper_id"`
	UpperName string  `json:"upper_name"`
	UpperNew  float64 `json:"upper_new"`
	Message   string  `json:"message"`
}

// Outcome is the result of checking or applying a plate change.
type Outcome struct {
	SubmissionID string      `json:"submission_id,omitempty"`
	OK           bool        `json:"ok"`
	Report       string      `json:"report,omitempty"`
	Violations   []Violation `json:"violations,omitempty"`
	Requested    int         `json:"requested"`
	Applied      bool        `json:"applied"`
	Forced       bool        `json:"forced,omitempty"`
	Duplicate    bool        `json:"duplicate,omitempty"`
	Adjusted     int         `json:"adjusted"`
	Summary      string      `json:"summary,omitempty"`
}

// NewOutcome fills the validation part of an Outcome from a batch verdict.
func NewOutcome(b ordering.Batch, res ordering.Result) Outcome {
	out := Outcome{
		OK:        res.OK,
		Report:    res.Report(),
		Requested: b.Changed(),
	}
	if len(res.Violations) > 0 {
		out.Violations = make([]Violation, len(res.Violations))
		for i, v := range res.Violations {
			out.Violations[i] = Violation{
				LowerID:   v.Lower.LevelID,
				LowerName: v.Lower.Name,
				LowerNew:  v.Lower.New(),
				UpperID:   v.Upper.LevelID,
				UpperName: v.Upper.Name,
				UpperNew:  v.Upper.New(),
				Message:   v.String(),
			}
		}
	}
	return out
}
