package ordering

import (
	"fmt"
	"strings"

	"github.com/okian/platechanges/internal/domain/elevation"
)

// Report text constants.
const (
	violationSeparator = ", and "
	proceedPrompt      = ". Do you want to proceed anyway?"
)

// Violation is a pair of levels whose order would invert.
// Lower was strictly below Upper and would end strictly above it.
type Violation struct {
	Lower Adjustment
	Upper Adjustment
}

// String renders the violation for the user.
func (v Violation) String() string {
	return fmt.Sprintf("%s (%s) would be higher than %s (%s)",
		v.Lower.Name, elevation.Format(v.Lower.New()),
		v.Upper.Name, elevation.Format(v.Upper.New()),
	)
}

// Result is the verdict for one batch.
type Result struct {
	OK         bool
	Violations []Violation
}

// Report joins every violation into one message followed by a
// proceed prompt. It is empty when the batch is OK.
func (r Result) Report() string {
	if len(r.Violations) == 0 {
		return ""
	}
	msgs := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		msgs[i] = v.String()
	}
	return strings.Join(msgs, violationSeparator) + proceedPrompt
}

// Validator checks batches for ordering inversions. It holds no state.
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() *Validator { return &Validator{} }

// Validate reports whether applying every adjustment in b at once keeps
// the pairwise order of its levels, and the report to show when it does not.
func (v *Validator) Validate(b Batch) (bool, string) {
	res := v.Check(b)
	return res.OK, res.Report()
}

// Check scans every unordered pair of the batch once. A pair is flagged
// only when the level that was strictly lower ends strictly higher; ties
// before or after the adjustment are never violations.
func (v *Validator) Check(b Batch) Result {
	var out []Violation
	items := b.items
	for i := 0; i < len(items); i++ {
		lower := items[i]
		for j := i + 1; j < len(items); j++ {
			upper := items[j]
			// items are sorted by Current, so lower.Current <= upper.Current
			if lower.Current == upper.Current {
				continue
			}
			if lower.New() > upper.New() {
				out = append(out, Violation{Lower: lower, Upper: upper})
			}
		}
	}
	return Result{OK: len(out) == 0, Violations: out}
}
