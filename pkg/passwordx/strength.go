// Package passwordx scores passwords against the registration policy.
//
// The policy is a strict AND over five criteria. A password that meets four
// of them is still rejected. Callers may run Evaluate client side for
// interactive feedback, but the server side result is the one that counts.
package passwordx

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLength is the minimum number of characters a password must contain.
const MinLength = 12

// Symbols is the fixed set of characters that satisfy the symbol criterion.
const Symbols = "@$!%*?&#"

// Criterion identifies one check of the password policy.
type Criterion string

const (
	CriterionLength    Criterion = "length"
	CriterionLowercase Criterion = "lowercase"
	CriterionUppercase Criterion = "uppercase"
	CriterionDigit     Criterion = "digit"
	CriterionSymbol    Criterion = "symbol"
)

// Criteria lists every criterion in the order they are reported.
var Criteria = []Criterion{
	CriterionLength,
	CriterionLowercase,
	CriterionUppercase,
	CriterionDigit,
	CriterionSymbol,
}

// Description returns the requirement as shown to a user.
func (c Criterion) Description() string {
	switch c {
	case CriterionLength:
		return "at least 12 characters"
	case CriterionLowercase:
		return "at least one lowercase letter"
	case CriterionUppercase:
		return "at least one uppercase letter"
	case CriterionDigit:
		return "at least one number"
	case CriterionSymbol:
		return "at least one special character (" + Symbols + ")"
	default:
		return string(c)
	}
}

// Strength labels derived from the score.
const (
	LabelWeak   = "weak"
	LabelMedium = "medium"
	LabelStrong = "strong"
)

// Result is the outcome of scoring a password. It is derived, never stored.
type Result struct {
	Score     int         `json:"score"`
	Label     string      `json:"label"`
	Valid     bool        `json:"valid"`
	Satisfied []Criterion `json:"satisfied"`
	Missing   []Criterion `json:"missing"`
}

// Has reports whether the criterion was satisfied.
func (r Result) Has(c Criterion) bool {
	for _, s := range r.Satisfied {
		if s == c {
			return true
		}
	}
	return false
}

// MissingDescriptions returns the human readable form of every unmet criterion.
func (r Result) MissingDescriptions() []string {
	out := make([]string, 0, len(r.Missing))
	for _, c := range r.Missing {
		out = append(out, c.Description())
	}
	return out
}

// Evaluate scores the password. Each criterion is worth one point.
func Evaluate(password string) Result {
	checks := map[Criterion]bool{
		CriterionLength:    utf8.RuneCountInString(password) >= MinLength,
		CriterionLowercase: strings.IndexFunc(password, isASCIILower) >= 0,
		CriterionUppercase: strings.IndexFunc(password, isASCIIUpper) >= 0,
		CriterionDigit:     strings.IndexFunc(password, isASCIIDigit) >= 0,
		CriterionSymbol:    strings.ContainsAny(password, Symbols),
	}

	res := Result{
		Satisfied: make([]Criterion, 0, len(Criteria)),
		Missing:   make([]Criterion, 0, len(Criteria)),
	}
	for _, c := range Criteria {
		if checks[c] {
			res.Satisfied = append(res.Satisfied, c)
			res.Score++
		} else {
			res.Missing = append(res.Missing, c)
		}
	}

	res.Valid = res.Score == len(Criteria)
	res.Label = label(res.Score)
	return res
}

// IsValid is shorthand for Evaluate(password).Valid.
func IsValid(password string) bool {
	return Evaluate(password).Valid
}

func label(score int) string {
	switch {
	case score >= 5:
		return LabelStrong
	case score >= 3:
		return LabelMedium
	default:
		return LabelWeak
	}
}

// Character classes are ASCII only, matching the [a-z] / [A-Z] / \d classes
// used by browser side checks.
func isASCIILower(r rune) bool { return r < unicode.MaxASCII && unicode.IsLower(r) }
func isASCIIUpper(r rune) bool { return r < unicode.MaxASCII && unicode.IsUpper(r) }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
