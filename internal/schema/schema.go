// Package schema validates panel frames before estimation. Validation is
// lazy: every violated check is reported, not just the first.
package schema

import (
	"fmt"
	"math"
	"strings"

	"git.home.luguber.info/inful/housing-dpe/internal/dataset"
)

// Year bounds accepted for panel observations.
const (
	MinYear = 2000
	MaxYear = 2035
)

// Failure describes a single violated check.
type Failure struct {
	Check  string `json:"check"`
	Column string `json:"column,omitempty"`
	Row    int    `json:"row"` // -1 for frame-level checks
	Detail string `json:"detail"`
}

// Error aggregates all failures found during one validation pass.
type Error struct {
	Failures []Failure
}

func (e *Error) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("schema validation failed: %s", e.Failures[0].Detail)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "schema validation failed with %d errors:", len(e.Failures))
	for _, f := range e.Failures {
		b.WriteString("\n  - ")
		b.WriteString(f.Detail)
	}
	return b.String()
}

// Validate checks the frame against the panel schema. A nil return means the
// frame is valid.
func Validate(f *dataset.Frame) error {
	var failures []Failure

	if f.Len() == 0 {
		failures = append(failures, Failure{
			Check: "non_empty", Row: -1, Detail: "empty dataframe",
		})
		return &Error{Failures: failures}
	}

	for i := 0; i < f.Len(); i++ {
		if f.FirmID[i] < 0 {
			failures = append(failures, Failure{
				Check: "ge", Column: "firm_id", Row: i,
				Detail: fmt.Sprintf("firm_id[%d] = %d is negative", i, f.FirmID[i]),
			})
		}
		if f.Year[i] < MinYear || f.Year[i] > MaxYear {
			failures = append(failures, Failure{
				Check: "between", Column: "year", Row: i,
				Detail: fmt.Sprintf("year[%d] = %d outside [%d, %d]", i, f.Year[i], MinYear, MaxYear),
			})
		}
		if !isFinite(f.X[i]) {
			failures = append(failures, Failure{
				Check: "finite", Column: "x", Row: i,
				Detail: fmt.Sprintf("x[%d] = %v is not finite", i, f.X[i]),
			})
		}
		if f.Treat[i] != 0 && f.Treat[i] != 1 {
			failures = append(failures, Failure{
				Check: "isin", Column: "treat", Row: i,
				Detail: fmt.Sprintf("treat[%d] = %d not in {0, 1}", i, f.Treat[i]),
			})
		}
		if !isFinite(f.Y[i]) {
			failures = append(failures, Failure{
				Check: "finite", Column: "y", Row: i,
				Detail: fmt.Sprintf("y[%d] = %v is not finite", i, f.Y[i]),
			})
		}
	}

	seen := make(map[[2]int]int, f.Len())
	for i := 0; i < f.Len(); i++ {
		k := [2]int{f.FirmID[i], f.Year[i]}
		if first, dup := seen[k]; dup {
			failures = append(failures, Failure{
				Check: "unique_key", Row: i,
				Detail: fmt.Sprintf("duplicate (firm_id, year) = (%d, %d) at rows %d and %d", k[0], k[1], first, i),
			})
		} else {
			seen[k] = i
		}
	}

	if len(failures) > 0 {
		return &Error{Failures: failures}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
