package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestPipelineErrorFormatting(t *testing.T) {
	e := New(CategoryValidation, SeverityWarning, "bad column")
	want := "validation (warning): bad column"
	if e.Error() != want {
		t.Errorf("expected %q, got %q", want, e.Error())
	}

	cause := fmt.Errorf("underlying")
	wrapped := Wrap(cause, CategoryLatex, SeverityError, "latexmk failed")
	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should see through the wrapper")
	}
}

func TestCategoryClassification(t *testing.T) {
	e := ConfigError("missing seed")
	if !IsCategory(e, CategoryConfig) {
		t.Error("expected config category")
	}
	if IsCategory(e, CategoryData) {
		t.Error("unexpected data category")
	}
	if GetCategory(fmt.Errorf("plain")) != CategoryInternal {
		t.Error("plain errors should classify as internal")
	}
}

func TestWithContext(t *testing.T) {
	e := ValidationError("out of range").
		WithContext("column", "year").
		WithContext("row", 12)
	if e.Context["column"] != "year" {
		t.Errorf("expected column context, got %v", e.Context)
	}
	if e.Context["row"] != 12 {
		t.Errorf("expected row context, got %v", e.Context)
	}
}
