package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "partnerdesk/pkg/domain-errors"
)

func TestParseEmail(t *testing.T) {
	email, err := ParseEmail("  Jan.Kowalski@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "jan.kowalski@example.com", email)

	for _, bad := range []string{"", "   ", "not-an-email", "a@", "@example.com"} {
		_, err := ParseEmail(bad)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), "input %q", bad)
	}
}

func TestSubscriberMatches(t *testing.T) {
	s := &Subscriber{Email: "anna@firma.pl", FirstName: "Anna", LastName: "Nowak"}
	assert.True(t, s.Matches(""))
	assert.True(t, s.Matches("firma"))
	assert.True(t, s.Matches("nowak"))
	assert.False(t, s.Matches("kowalski"))
}
