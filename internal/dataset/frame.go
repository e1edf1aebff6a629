// Package dataset holds the panel data model and the synthetic generator.
package dataset

import (
	"fmt"
)

// Column names of the panel frame, in persisted order.
var ColumnNames = []string{"firm_id", "year", "x", "treat", "y"}

// Frame is a column-oriented panel dataset. All columns have equal length,
// and rows are keyed by (firm_id, year).
type Frame struct {
	FirmID []int
	Year   []int
	X      []float64
	Treat  []int
	Y      []float64
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.FirmID) }

// Column returns a named column as float64 values. Integer columns are
// converted; the second return is false for unknown names.
func (f *Frame) Column(name string) ([]float64, bool) {
	switch name {
	case "firm_id":
		return intsToFloats(f.FirmID), true
	case "year":
		return intsToFloats(f.Year), true
	case "x":
		return f.X, true
	case "treat":
		return intsToFloats(f.Treat), true
	case "y":
		return f.Y, true
	default:
		return nil, false
	}
}

// Row returns a single row formatted for CSV output.
func (f *Frame) Row(i int) []string {
	return []string{
		fmt.Sprintf("%d", f.FirmID[i]),
		fmt.Sprintf("%d", f.Year[i]),
		fmt.Sprintf("%g", f.X[i]),
		fmt.Sprintf("%d", f.Treat[i]),
		fmt.Sprintf("%g", f.Y[i]),
	}
}

func intsToFloats(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = float64(v)
	}
	return out
}
