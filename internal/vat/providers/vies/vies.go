// Package vies queries the EU VAT Information Exchange System over SOAP.
package vies

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"partnerdesk/internal/vat/providers"
	id "partnerdesk/pkg/domain"
)

const (
	DefaultBaseURL = "https://ec.europa.eu"
	servicePath    = "/taxation_customs/vies/services/checkVatService"
	apiVersion     = "checkVat-1"
	maxBodyBytes   = 1 << 20
	emptyValue     = "---"
)

// Provider implements providers.Provider against the checkVat SOAP operation.
type Provider struct {
	id         string
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	countries  []string
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

func New(id, baseURL string, timeout time.Duration, opts ...Option) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	p := &Provider{
		id:         id,
		endpoint:   strings.TrimRight(baseURL, "/") + servicePath,
		httpClient: &http.Client{},
		timeout:    timeout,
		countries:  memberStates(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func memberStates() []string {
	codes := id.EUMemberStates()
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	return out
}

func (p *Provider) ID() string {
	return p.id
}

func (p *Provider) Capabilities() providers.Capabilities {
	return providers.Capabilities{
		Protocol:  providers.ProtocolSOAP,
		Type:      providers.ProviderTypeVIES,
		Countries: p.countries,
		Version:   apiVersion,
	}
}

const requestTemplate = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:urn="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
  <soapenv:Header/>
  <soapenv:Body>
    <urn:checkVat>
      <urn:countryCode>%s</urn:countryCode>
      <urn:vatNumber>%s</urn:vatNumber>
    </urn:checkVat>
  </soapenv:Body>
</soapenv:Envelope>`

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

type envelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Response *checkVatResponse `xml:"checkVatResponse"`
		Fault    *soapFault        `xml:"Fault"`
	} `xml:"Body"`
}

type checkVatResponse struct {
	CountryCode       string `xml:"countryCode"`
	VATNumber         string `xml:"vatNumber"`
	RequestDate       string `xml:"requestDate"`
	Valid             bool   `xml:"valid"`
	Name              string `xml:"name"`
	Address           string `xml:"address"`
	RequestIdentifier string `xml:"requestIdentifier"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
}

func (p *Provider) Lookup(ctx context.Context, q providers.Query) (*providers.Evidence, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	payload := fmt.Sprintf(requestTemplate, escape(strings.ToUpper(q.CountryCode)), escape(q.VATNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, strings.NewReader(payload))
	if err != nil {
		return nil, providers.NewProviderError(providers.ErrorInternal, p.id, "build request", err)
	}
	req.Header.Set("Content-Type", "text/xml;charset=UTF-8")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, providers.TransportError(p.id, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, providers.TransportError(p.id, err)
	}

	checkedAt := q.Date
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}
	return p.parseResponse(resp.StatusCode, body, checkedAt)
}

func (p *Provider) parseResponse(status int, body []byte, checkedAt time.Time) (*providers.Evidence, error) {
	var env envelope
	decodeErr := xml.NewDecoder(bytes.NewReader(body)).Decode(&env)

	// Faults arrive with HTTP 500, so inspect the body before the status.
	if decodeErr == nil && env.Body.Fault != nil {
		return nil, p.faultError(env.Body.Fault)
	}
	switch {
	case status == http.StatusTooManyRequests:
		return nil, providers.NewProviderError(providers.ErrorRateLimited, p.id, "request limit reached", nil)
	case status >= 500:
		return nil, providers.NewProviderError(providers.ErrorProviderOutage, p.id,
			fmt.Sprintf("registry returned status %d", status), nil)
	case status != http.StatusOK:
		return nil, providers.NewProviderError(providers.ErrorBadData, p.id,
			fmt.Sprintf("unexpected status %d", status), nil)
	}
	if decodeErr != nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, p.id, "malformed SOAP response", decodeErr)
	}
	r := env.Body.Response
	if r == nil {
		return nil, providers.NewProviderError(providers.ErrorBadData, p.id, "missing checkVatResponse", nil)
	}

	ev := &providers.Evidence{
		ProviderID:     p.id,
		ProviderType:   providers.ProviderTypeVIES,
		Valid:          r.Valid,
		VerificationID: strings.TrimSpace(r.RequestIdentifier),
		CheckedAt:      checkedAt,
		Metadata: map[string]string{
			"request_date": strings.TrimSpace(r.RequestDate),
		},
	}
	if r.Valid {
		ev.Company = ParseAddress(clean(r.Address))
		ev.Company.Name = clean(r.Name)
	}
	return ev, nil
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == emptyValue {
		return ""
	}
	return s
}

func (p *Provider) faultError(f *soapFault) *providers.ProviderError {
	reason := strings.TrimSpace(f.String)
	var category providers.ErrorCategory
	switch reason {
	case "INVALID_INPUT", "INVALID_REQUESTER_INFO":
		category = providers.ErrorInvalidInput
	case "MS_UNAVAILABLE", "SERVICE_UNAVAILABLE":
		category = providers.ErrorProviderOutage
	case "MS_MAX_CONCURRENT_REQ", "GLOBAL_MAX_CONCURRENT_REQ":
		category = providers.ErrorRateLimited
	case "TIMEOUT":
		category = providers.ErrorTimeout
	default:
		category = providers.ErrorInternal
	}
	return providers.NewProviderError(category, p.id, "SOAP fault: "+reason, nil)
}

// Health fetches the service WSDL.
func (p *Provider) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?wsdl", nil)
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
