package dataset

import (
	"testing"
)

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(2000, 42)
	b := Generate(2000, 42)

	if a.Len() != b.Len() {
		t.Fatalf("row counts differ: %d vs %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.FirmID[i] != b.FirmID[i] || a.Year[i] != b.Year[i] ||
			a.X[i] != b.X[i] || a.Treat[i] != b.Treat[i] || a.Y[i] != b.Y[i] {
			t.Fatalf("row %d differs between identically seeded frames", i)
		}
	}
}

func TestGenerateSeedChangesData(t *testing.T) {
	a := Generate(500, 1)
	b := Generate(500, 2)

	same := a.Len() == b.Len()
	if same {
		for i := 0; i < a.Len(); i++ {
			if a.X[i] != b.X[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Error("different seeds produced identical frames")
	}
}

func TestGenerateUniqueSortedKeys(t *testing.T) {
	f := Generate(5000, 7)

	seen := make(map[[2]int]bool)
	for i := 0; i < f.Len(); i++ {
		k := [2]int{f.FirmID[i], f.Year[i]}
		if seen[k] {
			t.Fatalf("duplicate key (%d, %d) at row %d", k[0], k[1], i)
		}
		seen[k] = true

		if i > 0 {
			prev := [2]int{f.FirmID[i-1], f.Year[i-1]}
			if prev[0] > k[0] || (prev[0] == k[0] && prev[1] >= k[1]) {
				t.Fatalf("rows not sorted by (firm_id, year) at row %d", i)
			}
		}
	}
}

func TestGenerateColumnRanges(t *testing.T) {
	f := Generate(3000, 99)

	if f.Len() == 0 {
		t.Fatal("generated frame is empty")
	}
	for i := 0; i < f.Len(); i++ {
		if f.FirmID[i] < 0 {
			t.Errorf("row %d: negative firm_id %d", i, f.FirmID[i])
		}
		if f.Year[i] < firstYear || f.Year[i] > lastYear {
			t.Errorf("row %d: year %d outside [%d, %d]", i, f.Year[i], firstYear, lastYear)
		}
		if f.Treat[i] != 0 && f.Treat[i] != 1 {
			t.Errorf("row %d: treat %d not binary", i, f.Treat[i])
		}
	}
}

func TestColumnLookup(t *testing.T) {
	f := Generate(200, 3)

	for _, name := range ColumnNames {
		col, ok := f.Column(name)
		if !ok {
			t.Errorf("column %q not found", name)
		}
		if len(col) != f.Len() {
			t.Errorf("column %q has length %d, want %d", name, len(col), f.Len())
		}
	}
	if _, ok := f.Column("bogus"); ok {
		t.Error("unknown column should not resolve")
	}
}
