package providers_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"partnerdesk/internal/vat/providers"
	"partnerdesk/internal/vat/providers/mocks"
)

func stubProvider(ctrl *gomock.Controller, id string, caps providers.Capabilities) *mocks.MockProvider {
	p := mocks.NewMockProvider(ctrl)
	p.EXPECT().ID().Return(id).AnyTimes()
	p.EXPECT().Capabilities().Return(caps).AnyTimes()
	return p
}

func TestProviderRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	national := stubProvider(ctrl, "mf", providers.Capabilities{
		Type: providers.ProviderTypeNational, Countries: []string{"PL"},
	})
	vies := stubProvider(ctrl, "vies", providers.Capabilities{
		Type: providers.ProviderTypeVIES, Countries: []string{"DE", "FR", "PL"},
	})

	reg := providers.NewProviderRegistry()
	require.NoError(t, reg.Register(vies))
	require.NoError(t, reg.Register(national))

	t.Run("duplicate id rejected", func(t *testing.T) {
		assert.Error(t, reg.Register(stubProvider(ctrl, "mf", providers.Capabilities{})))
	})

	t.Run("national registry preferred", func(t *testing.T) {
		p, ok := reg.ForCountry("PL")
		require.True(t, ok)
		assert.Equal(t, "mf", p.ID())
	})

	t.Run("falls back to vies", func(t *testing.T) {
		p, ok := reg.ForCountry("de")
		require.True(t, ok)
		assert.Equal(t, "vies", p.ID())
	})

	t.Run("uncovered country", func(t *testing.T) {
		_, ok := reg.ForCountry("US")
		assert.False(t, ok)
	})

	t.Run("get and all", func(t *testing.T) {
		p, ok := reg.Get("vies")
		require.True(t, ok)
		assert.Equal(t, "vies", p.ID())
		all := reg.All()
		require.Len(t, all, 2)
		assert.Equal(t, "mf", all[0].ID())
	})
}

func TestProviderErrors(t *testing.T) {
	tests := []struct {
		category  providers.ErrorCategory
		retryable bool
		health    bool
	}{
		{providers.ErrorTimeout, true, true},
		{providers.ErrorProviderOutage, true, true},
		{providers.ErrorRateLimited, true, true},
		{providers.ErrorBadData, false, true},
		{providers.ErrorNotFound, false, false},
		{providers.ErrorInvalidInput, false, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.category), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", providers.NewProviderError(tt.category, "p", "msg", nil))
			assert.Equal(t, tt.category, providers.GetCategory(err))
			assert.Equal(t, tt.retryable, providers.IsRetryable(err))
			assert.Equal(t, tt.health, providers.CountsAgainstHealth(err))
		})
	}

	assert.Equal(t, providers.ErrorInternal, providers.GetCategory(errors.New("plain")))
	assert.Equal(t, providers.ErrorTimeout, providers.TransportError("p", context.DeadlineExceeded).Category)
	assert.Equal(t, providers.ErrorProviderOutage, providers.TransportError("p", errors.New("dial")).Category)
}
