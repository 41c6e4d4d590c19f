package vies

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnerdesk/internal/vat/providers"
	"partnerdesk/internal/vat/providers/contract"
)

const validResponse = `<env:Envelope xmlns:env="http://schemas.xmlsoap.org/soap/envelope/"><env:Header/><env:Body>
<ns2:checkVatResponse xmlns:ns2="urn:ec.europa.eu:taxud:vies:services:checkVat:types">
<ns2:countryCode>DE</ns2:countryCode><ns2:vatNumber>%s</ns2:vatNumber>
<ns2:requestDate>2024-06-03+02:00</ns2:requestDate><ns2:valid>%s</ns2:valid>
<ns2:name>%s</ns2:name><ns2:address>%s</ns2:address>%s
</ns2:checkVatResponse></env:Body></env:Envelope>`

const faultResponse = `<env:Envelope xmlns:env="http://schemas.xmlsoap.org/soap/envelope/"><env:Body>
<env:Fault><faultcode>env:Server</faultcode><faultstring>%s</faultstring></env:Fault>
</env:Body></env:Envelope>`

func fakeVIES(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.URL.Path != servicePath || r.Header.Get("Content-Type") != "text/xml;charset=UTF-8" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		raw, _ := io.ReadAll(r.Body)
		body := string(raw)
		switch {
		case strings.Contains(body, "<urn:vatNumber>123456789</urn:vatNumber>"):
			fmt.Fprintf(w, validResponse, "123456789", "true", "ACME GMBH",
				"MUSTERSTRASSE 12\n10115 BERLIN\n", "<ns2:requestIdentifier>WAPIAAAAX</ns2:requestIdentifier>")
		case strings.Contains(body, "<urn:vatNumber>000000000</urn:vatNumber>"):
			fmt.Fprintf(w, validResponse, "000000000", "false", "---", "---", "")
		case strings.Contains(body, "<urn:vatNumber>FAULTINPUT</urn:vatNumber>"):
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, faultResponse, "INVALID_INPUT")
		case strings.Contains(body, "<urn:vatNumber>FAULTMS</urn:vatNumber>"):
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, faultResponse, "MS_UNAVAILABLE")
		case strings.Contains(body, "<urn:vatNumber>FAULTBUSY</urn:vatNumber>"):
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, faultResponse, "GLOBAL_MAX_CONCURRENT_REQ")
		case strings.Contains(body, "<urn:vatNumber>FAULTSLOW</urn:vatNumber>"):
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, faultResponse, "TIMEOUT")
		case strings.Contains(body, "<urn:vatNumber>GATEWAY</urn:vatNumber>"):
			w.WriteHeader(http.StatusBadGateway)
		case strings.Contains(body, "<urn:vatNumber>GARBAGE</urn:vatNumber>"):
			_, _ = w.Write([]byte("<html>maintenance"))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func TestLookup(t *testing.T) {
	srv := fakeVIES(t)
	defer srv.Close()
	p := New("vies", srv.URL, time.Second, WithHTTPClient(srv.Client()))

	t.Run("valid number", func(t *testing.T) {
		ev, err := p.Lookup(context.Background(), providers.Query{CountryCode: "de", VATNumber: "123456789"})
		require.NoError(t, err)
		assert.True(t, ev.Valid)
		assert.Equal(t, "WAPIAAAAX", ev.VerificationID)
		assert.Equal(t, providers.CompanyDetails{
			Name:           "ACME GMBH",
			StreetName:     "MUSTERSTRASSE",
			BuildingNumber: "12",
			PostalCode:     "10115",
			City:           "BERLIN",
		}, ev.Company)
		assert.Equal(t, "2024-06-03+02:00", ev.Metadata["request_date"])
	})

	t.Run("invalid number is evidence, not an error", func(t *testing.T) {
		ev, err := p.Lookup(context.Background(), providers.Query{CountryCode: "DE", VATNumber: "000000000"})
		require.NoError(t, err)
		assert.False(t, ev.Valid)
		assert.True(t, ev.Company.IsZero())
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, p.Health(context.Background()))
	})
}

func TestProviderContract(t *testing.T) {
	srv := fakeVIES(t)
	defer srv.Close()
	p := New("vies", srv.URL, time.Second, WithHTTPClient(srv.Client()))

	(&contract.CapabilityTest{Provider: p}).Run(t)
	assert.True(t, p.Capabilities().Covers("PL"))
	assert.False(t, p.Capabilities().Covers("GB"))

	suite := &contract.ContractSuite{
		ProviderID:      "vies",
		ProviderVersion: "checkVat-1",
		Tests: []contract.ContractTest{
			{
				Name:         "valid registration",
				Provider:     p,
				Query:        providers.Query{CountryCode: "DE", VATNumber: "123456789"},
				ExpectedType: providers.ProviderTypeVIES,
			},
			{
				Name:         "unknown registration",
				Provider:     p,
				Query:        providers.Query{CountryCode: "DE", VATNumber: "000000000"},
				ExpectedType: providers.ProviderTypeVIES,
			},
		},
	}
	suite.Run(t)

	errorCases := []contract.ErrorContractTest{
		{Name: "invalid input fault", Query: providers.Query{CountryCode: "DE", VATNumber: "FAULTINPUT"}, ExpectedError: providers.ErrorInvalidInput},
		{Name: "member state down", Query: providers.Query{CountryCode: "DE", VATNumber: "FAULTMS"}, ExpectedError: providers.ErrorProviderOutage, ExpectedRetry: true},
		{Name: "concurrency limit", Query: providers.Query{CountryCode: "DE", VATNumber: "FAULTBUSY"}, ExpectedError: providers.ErrorRateLimited, ExpectedRetry: true},
		{Name: "timeout fault", Query: providers.Query{CountryCode: "DE", VATNumber: "FAULTSLOW"}, ExpectedError: providers.ErrorTimeout, ExpectedRetry: true},
		{Name: "gateway error", Query: providers.Query{CountryCode: "DE", VATNumber: "GATEWAY"}, ExpectedError: providers.ErrorProviderOutage, ExpectedRetry: true},
		{Name: "non-SOAP body", Query: providers.Query{CountryCode: "DE", VATNumber: "GARBAGE"}, ExpectedError: providers.ErrorBadData},
	}
	for i := range errorCases {
		errorCases[i].Provider = p
		errorCases[i].Run(t)
	}
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want providers.CompanyDetails
	}{
		{"empty", "", providers.CompanyDetails{}},
		{"street without number", "PLACE VENDOME", providers.CompanyDetails{StreetName: "PLACE VENDOME"}},
		{"city without postal code", "RUE X 4\nPARIS", providers.CompanyDetails{StreetName: "RUE X", BuildingNumber: "4", City: "PARIS"}},
		{"single token city line", "VIA ROMA 1\n00100", providers.CompanyDetails{StreetName: "VIA ROMA", BuildingNumber: "1", City: "00100"}},
		{"blank lines skipped", "\n  KAI 5 \n\n 1010 WIEN ", providers.CompanyDetails{StreetName: "KAI", BuildingNumber: "5", PostalCode: "1010", City: "WIEN"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAddress(tt.in))
		})
	}
}
