// Package mf queries the Polish Ministry of Finance VAT taxpayer white list.
package mf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"partnerdesk/internal/vat/providers"
	pstrings "partnerdesk/pkg/platform/strings"
)

const (
	DefaultBaseURL = "https://wl-api.mf.gov.pl"
	apiVersion     = "v1"
	maxBodyBytes   = 1 << 20
)

// Provider implements providers.Provider against the white-list search API.
type Provider struct {
	id         string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*Provider)

// WithHTTPClient replaces the default client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// New builds a provider. A zero timeout leaves deadlines to the caller's context.
func New(id, baseURL string, timeout time.Duration, opts ...Option) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	p := &Provider{
		id:         id,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) ID() string {
	return p.id
}

func (p *Provider) Capabilities() providers.Capabilities {
	return providers.Capabilities{
		Protocol:  providers.ProtocolHTTP,
		Type:      providers.ProviderTypeNational,
		Countries: []string{"PL"},
		Version:   apiVersion,
	}
}

type searchResponse struct {
	Result *struct {
		Subject   *subject `json:"subject"`
		RequestID string   `json:"requestId"`
	} `json:"result"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type subject struct {
	Name             string `json:"name"`
	NIP              string `json:"nip"`
	StatusVat        string `json:"statusVat"`
	Regon            string `json:"regon"`
	WorkingAddress   string `json:"workingAddress"`
	ResidenceAddress string `json:"residenceAddress"`
}

func (p *Provider) Lookup(ctx context.Context, q providers.Query) (*providers.Evidence, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	date := q.Date
	if date.IsZero() {
		date = time.Now()
	}
	endpoint := fmt.Sprintf("%s/api/search/nip/%s?date=%s",
		p.baseURL, url.PathEscape(q.VATNumber), date.Format(time.DateOnly))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, p.id, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, providers.TransportError(p.id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, providers.TransportError(p.id, err)
	}
	return p.parseResponse(resp.StatusCode, body, date)
}

func (p *Provider) parseResponse(status int, body []byte, checkedAt time.Time) (*providers.Evidence, error) {
	switch {
	case status == http.StatusBadRequest:
		msg := "registry rejected the NIP"
		var r searchResponse
		if json.Unmarshal(body, &r) == nil && r.Message != "" {
			msg = r.Message
		}
		return nil, providers.NewProviderError(providers.ErrorInvalidInput, p.id, msg, nil)
	case status == http.StatusTooManyRequests:
		return nil, providers.NewProviderError(providers.ErrorRateLimited, p.id, "request limit reached", nil)
	case status >= 500:
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, p.id,
			fmt.Sprintf("registry returned status %d", status), nil)
	case status != http.StatusOK:
		return nil, providers.NewProviderError(providers.ErrorBadData, p.id,
			fmt.Sprintf("unexpected status %d", status), nil)
	}

	var r searchResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, p.id, "malformed response", err)
	}
	if r.Result == nil || r.Result.Subject == nil {
		return nil, providers.NewProviderError(providers.ErrorNotFound, p.id, "no taxpayer with this NIP", nil)
	}

	s := r.Result.Subject
	address := s.WorkingAddress
	if address == "" {
		address = s.ResidenceAddress
	}
	company := ParseAddress(address)
	company.Name = pstrings.Capitalize(s.Name)

	return &providers.Evidence{
		ProviderID:     p.id,
		ProviderType:   providers.ProviderTypeNational,
		Valid:          true,
		VerificationID: r.Result.RequestID,
		Company:        company,
		CheckedAt:      checkedAt,
		Metadata: map[string]string{
			"status_vat": s.StatusVat,
			"regon":      s.Regon,
		},
	}, nil
}

// Health reports whether the API host answers at all.
func (p *Provider) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.baseURL, nil)
	if err != nil {
		return providers.NewProviderError(providers.ErrorInternal, p.id, "build request", err)
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return providers.TransportError(p.id, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 500 {
		return providers.NewProviderError(providers.ErrorProviderOutage, p.id,
			fmt.Sprintf("registry returned status %d", resp.StatusCode), nil)
	}
	return nil
}
