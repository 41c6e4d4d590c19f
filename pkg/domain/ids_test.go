package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "partnerdesk/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePartnerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePartnerID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePartnerID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParsePartnerID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, PartnerID(validUUID), id)
	})
}

func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE partners;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSubscriberID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errUser := ParseUserID(validUUID)
		_, errPartner := ParsePartnerID(validUUID)
		_, errSubscriber := ParseSubscriberID(validUUID)
		_, errSession := ParseSessionID(validUUID)

		require.NoError(t, errUser)
		require.NoError(t, errPartner)
		require.NoError(t, errSubscriber)
		require.NoError(t, errSession)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		input := input
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errUser := ParseUserID(input)
			_, errPartner := ParsePartnerID(input)
			_, errSubscriber := ParseSubscriberID(input)
			_, errSession := ParseSessionID(input)

			require.Error(t, errUser)
			require.Error(t, errPartner)
			require.Error(t, errSubscriber)
			require.Error(t, errSession)
		})
	}
}

func TestParseCountryCode(t *testing.T) {
	tests := []struct {
		input   string
		want    CountryCode
		wantErr bool
	}{
		{"PL", "PL", false},
		{" de ", "DE", false},
		{"", "", true},
		{"POL", "", true},
		{"P1", "", true},
		{"ł", "", true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCountryCode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.True(t, CountryCode("PL").IsEU())
	assert.False(t, CountryCode("US").IsEU())
	assert.Len(t, EUMemberStates(), 27)
}

func TestVerificationStatus(t *testing.T) {
	s, err := ParseVerificationStatus("verified")
	require.NoError(t, err)
	assert.True(t, s.Matches(true))
	assert.False(t, s.Matches(false))

	any, err := ParseVerificationStatus("")
	require.NoError(t, err)
	assert.True(t, any.Matches(false))

	_, err = ParseVerificationStatus("pending")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestIDsRoundTripThroughJSON(t *testing.T) {
	type payload struct {
		Partner    PartnerID    `json:"partner"`
		Subscriber SubscriberID `json:"subscriber"`
		Session    SessionID    `json:"session"`
	}
	in := payload{Partner: NewPartnerID(), Subscriber: NewSubscriberID(), Session: NewSessionID()}

	raw, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(raw), in.Session.String())

	var out payload
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, in, out)

	err = json.Unmarshal([]byte(`{"session":"nope"}`), &out)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
