package estimate

import (
	"fmt"
	"strings"

	apperrors "git.home.luguber.info/inful/housing-dpe/internal/errors"
)

// Formula is a parsed model formula of the form "y ~ treat + x".
// The intercept is implicit; Terms excludes it.
type Formula struct {
	Response string
	Terms    []string
}

// ParseFormula parses an additive model formula. Only response + additive
// regressors are supported; interactions and intercept suppression are not.
func ParseFormula(s string) (*Formula, error) {
	parts := strings.Split(s, "~")
	if len(parts) != 2 {
		return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
			fmt.Sprintf("formula must have the form 'response ~ terms': %q", s))
	}

	response := strings.TrimSpace(parts[0])
	if response == "" || strings.ContainsAny(response, "+*:") {
		return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
			fmt.Sprintf("invalid response in formula: %q", s))
	}

	var terms []string
	for _, raw := range strings.Split(parts[1], "+") {
		term := strings.TrimSpace(raw)
		switch {
		case term == "":
			return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
				fmt.Sprintf("empty term in formula: %q", s))
		case term == "1":
			// Intercept is implicit; tolerate an explicit one.
			continue
		case term == "0" || strings.HasPrefix(term, "-"):
			return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
				"intercept suppression is not supported")
		case strings.ContainsAny(term, "*:"):
			return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
				fmt.Sprintf("interaction terms are not supported: %q", term))
		case term == response:
			return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
				fmt.Sprintf("response %q cannot appear as a regressor", term))
		default:
			terms = append(terms, term)
		}
	}

	if len(terms) == 0 {
		return nil, apperrors.New(apperrors.CategoryEstimate, apperrors.SeverityError,
			fmt.Sprintf("formula has no regressors: %q", s))
	}
	return &Formula{Response: response, Terms: terms}, nil
}

// String reassembles the canonical formula text.
func (f *Formula) String() string {
	return f.Response + " ~ " + strings.Join(f.Terms, " + ")
}

// ParamNames returns the design-matrix column names, intercept first.
func (f *Formula) ParamNames() []string {
	names := make([]string, 0, len(f.Terms)+1)
	names = append(names, "Intercept")
	names = append(names, f.Terms...)
	return names
}
