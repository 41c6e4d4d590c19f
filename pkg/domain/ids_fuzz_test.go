package domain

import (
	"strings"
	"testing"
)

// FuzzParseSessionID feeds arbitrary path segments to the session ID parser,
// which sees raw URL input. Whatever it accepts must print back to a
// canonical form that parses to the same value, and never be the nil ID.
func FuzzParseSessionID(f *testing.F) {
	for _, seed := range []string{
		"",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
		"{6ba7b810-9dad-11d1-80b4-00c04fd430c8}",
		"00000000-0000-0000-0000-000000000000",
		"../sessions",
		"\x00\xff",
	} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		sessionID, err := ParseSessionID(raw)
		if err != nil {
			return
		}
		if sessionID.IsNil() {
			t.Fatalf("accepted the nil id from %q", raw)
		}
		canonical := sessionID.String()
		if canonical != strings.ToLower(canonical) || len(canonical) != 36 {
			t.Fatalf("non-canonical rendering %q", canonical)
		}
		again, err := ParseSessionID(canonical)
		if err != nil || again != sessionID {
			t.Fatalf("%q does not round-trip: %v", canonical, err)
		}
	})
}

// FuzzParseCountryCode checks that an accepted code is always two upper-case
// ASCII letters, whatever casing or padding came in.
func FuzzParseCountryCode(f *testing.F) {
	for _, seed := range []string{"pl", " de ", "", "ÄÖ", "P1", "EL"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		c, err := ParseCountryCode(raw)
		if err != nil {
			return
		}
		if len(c) != 2 || !isASCIIUpper(c[0]) || !isASCIIUpper(c[1]) {
			t.Fatalf("accepted malformed country %q from %q", c, raw)
		}
	})
}
