// Package identifier normalizes VAT identifiers and checks them against
// per-country structural rules.
//
// Countries without a registered rule fall back to a minimum-length check.
// New countries are supported by registering a Rule; Validate never changes.
package identifier

import "strings"

// Result is the outcome of validating one identifier.
type Result struct {
	NormalizedValue     string
	IsStructurallyValid bool
}

// Rule checks an already-normalized identifier.
type Rule interface {
	Check(normalized string) bool
}

// RuleFunc adapts a plain function to Rule.
type RuleFunc func(normalized string) bool

func (f RuleFunc) Check(normalized string) bool { return f(normalized) }

// Normalize removes every rune that is not an ASCII letter or digit.
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isASCIIDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isASCIIDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Validator applies the rules in its registry. The zero value is not usable;
// build one with NewValidator.
type Validator struct {
	registry *Registry
}

func NewValidator(registry *Registry) *Validator {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Validator{registry: registry}
}

// Validate normalizes rawValue and applies the rule for countryCode.
// It is pure and total.
func (v *Validator) Validate(countryCode, rawValue string) Result {
	normalized := Normalize(rawValue)
	rule := v.registry.ruleOrFallback(countryCode)
	return Result{
		NormalizedValue:     normalized,
		IsStructurallyValid: rule.Check(normalized),
	}
}

// HasSpecificRule reports whether countryCode has its own registered rule.
func (v *Validator) HasSpecificRule(countryCode string) bool {
	return v.registry.HasSpecificRule(countryCode)
}

var defaultValidator = NewValidator(DefaultRegistry())

// Validate uses the default registry.
func Validate(countryCode, rawValue string) Result {
	return defaultValidator.Validate(countryCode, rawValue)
}

// NormalizeVAT normalizes rawValue, upper-cases it and drops a leading
// country prefix, e.g. "pl 526-025-02-74" for "PL" becomes "5260250274".
func NormalizeVAT(countryCode, rawValue string) string {
	normalized := strings.ToUpper(Normalize(rawValue))
	prefix := strings.ToUpper(strings.TrimSpace(countryCode))
	if prefix != "" && len(normalized) > len(prefix) && strings.HasPrefix(normalized, prefix) {
		return normalized[len(prefix):]
	}
	return normalized
}
