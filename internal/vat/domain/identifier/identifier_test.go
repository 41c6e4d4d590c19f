package identifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type IdentifierSuite struct {
	suite.Suite
}

func TestIdentifierSuite(t *testing.T) {
	suite.Run(t, new(IdentifierSuite))
}

func (s *IdentifierSuite) TestNormalize() {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"123-456-32-18", "1234563218"},
		{" PL 123.456.32.18 ", "PL1234563218"},
		{"ab_c!", "abc"},
		{"żółć123", "123"},
		{"\x00\xff12", "12"},
	}
	for _, tt := range tests {
		tt := tt
		s.Run(tt.in, func() {
			s.Equal(tt.want, Normalize(tt.in))
		})
	}
}

func (s *IdentifierSuite) TestPolishChecksum() {
	tests := []struct {
		name  string
		raw   string
		valid bool
	}{
		{"known good", "1234563218", true},
		{"known good with separators", "123-456-32-18", true},
		{"checksum mismatch", "1234563217", false},
		{"too short", "123", false},
		{"too long", "12345632181", false},
		{"letters remain after normalization", "12345678ab", false},
		{"remainder ten never matches", "1234567890", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		tt := tt
		s.Run(tt.name, func() {
			res := Validate("PL", tt.raw)
			s.Equal(tt.valid, res.IsStructurallyValid)
			s.Equal(Normalize(tt.raw), res.NormalizedValue)
		})
	}
}

func (s *IdentifierSuite) TestDefaultRule() {
	s.True(Validate("XX", "ANYVAL123").IsStructurallyValid)
	s.True(Validate("DE", "1234").IsStructurallyValid)
	s.False(Validate("DE", "123").IsStructurallyValid)
	s.False(Validate("DE", "1-2-3").IsStructurallyValid)
	s.False(Validate("", "").IsStructurallyValid)
}

func (s *IdentifierSuite) TestCountryCodeIsCaseInsensitive() {
	s.True(Validate(" pl ", "1234563218").IsStructurallyValid)
	// Four characters would pass the default rule but not the PL rule.
	s.False(Validate("pl", "1234").IsStructurallyValid)
}

func (s *IdentifierSuite) TestRegistryExtension() {
	reg := DefaultRegistry()
	reg.Register("CZ", MinLengthRule{Min: 7})
	v := NewValidator(reg)

	s.True(v.HasSpecificRule("cz"))
	s.False(v.Validate("CZ", "1234567").IsStructurallyValid)
	s.True(v.Validate("CZ", "12345678").IsStructurallyValid)

	reg.Register("CZ", nil)
	s.False(v.HasSpecificRule("CZ"))

	reg.SetFallback(RuleFunc(func(string) bool { return false }))
	s.False(v.Validate("FR", "FR123456789").IsStructurallyValid)
	s.True(v.Validate("PL", "1234563218").IsStructurallyValid)
}

func (s *IdentifierSuite) TestMisconfiguredChecksumRuleRejects() {
	rule := WeightedChecksumRule{Length: 3, Weights: []int{1}, Modulus: 11}
	s.False(rule.Check("123"))
	s.False(WeightedChecksumRule{Length: 2, Weights: []int{1}}.Check("11"))
}

func TestNilRegistryUsesDefaults(t *testing.T) {
	v := NewValidator(nil)
	assert.True(t, v.HasSpecificRule("PL"))
	assert.True(t, v.Validate("PL", "1234563218").IsStructurallyValid)
}

func TestNormalizeVAT(t *testing.T) {
	for _, tc := range []struct{ country, raw, want string }{
		{"PL", "pl 526-025-02-74", "5260250274"},
		{"pl", "PL5260250274", "5260250274"},
		{"DE", "de 123 456 789", "123456789"},
		{"FR", "fr xx 123456789", "XX123456789"},
		{"PL", "PL", "PL"},
		{"", "abc", "ABC"},
	} {
		assert.Equal(t, tc.want, NormalizeVAT(tc.country, tc.raw), "%s %q", tc.country, tc.raw)
	}
}

func FuzzNormalizeIdempotent(f *testing.F) {
	f.Add("123-456-32-18")
	f.Add("ąę 12 ab")
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("normalize not idempotent: %q -> %q -> %q", s, once, twice)
		}
		// Validate must never panic.
		_ = Validate("PL", s)
		_ = Validate("XX", s)
	})
}
