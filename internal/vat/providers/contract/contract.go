// Package contract holds reusable checks every providers.Provider must pass.
// Provider packages run these suites against httptest fakes of their registry.
package contract

import (
	"context"
	"testing"

	"partnerdesk/internal/vat/providers"
)

// ContractTest defines a test case for provider contract validation
type ContractTest struct {
	Name         string
	Provider     providers.Provider
	Query        providers.Query
	ExpectedType providers.ProviderType
	ValidateFunc func(evidence *providers.Evidence) error
}

// ContractSuite is a collection of contract tests for a provider
type ContractSuite struct {
	ProviderID      string
	ProviderVersion string
	Tests           []ContractTest
}

// Run executes all contract tests in the suite
func (s *ContractSuite) Run(t *testing.T) {
	t.Helper()
	for _, test := range s.Tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			evidence, err := test.Provider.Lookup(context.Background(), test.Query)
			if err != nil {
				t.Fatalf("provider lookup failed: %v", err)
			}

			if evidence.ProviderID != s.ProviderID {
				t.Errorf("expected provider ID %s, got %s", s.ProviderID, evidence.ProviderID)
			}
			if evidence.ProviderType != test.ExpectedType {
				t.Errorf("expected type %s, got %s", test.ExpectedType, evidence.ProviderType)
			}
			if v := test.Provider.Capabilities().Version; v != s.ProviderVersion {
				t.Errorf("expected version %s, got %s", s.ProviderVersion, v)
			}
			if evidence.CheckedAt.IsZero() {
				t.Error("CheckedAt not set")
			}
			// A registry that denies the registration has nothing to say about the company.
			if !evidence.Valid && !evidence.Company.IsZero() {
				t.Errorf("invalid evidence carries company details: %+v", evidence.Company)
			}

			if test.ValidateFunc != nil {
				if err := test.ValidateFunc(evidence); err != nil {
					t.Errorf("custom validation failed: %v", err)
				}
			}
		})
	}
}

// CapabilityTest validates that provider capabilities are correctly declared
type CapabilityTest struct {
	Provider providers.Provider
}

func (ct *CapabilityTest) Run(t *testing.T) {
	t.Helper()
	caps := ct.Provider.Capabilities()

	if caps.Protocol == "" {
		t.Error("protocol not set")
	}
	if caps.Type == "" {
		t.Error("type not set")
	}
	if caps.Version == "" {
		t.Error("version not set")
	}
	if len(caps.Countries) == 0 {
		t.Error("no countries declared")
	}
	for _, c := range caps.Countries {
		if len(c) != 2 || c[0] < 'A' || c[0] > 'Z' || c[1] < 'A' || c[1] > 'Z' {
			t.Errorf("country %q is not an upper-case alpha-2 code", c)
		}
	}
}

// ErrorContractTest validates that provider errors follow the taxonomy
type ErrorContractTest struct {
	Name          string
	Provider      providers.Provider
	Query         providers.Query
	ExpectedError providers.ErrorCategory
	ExpectedRetry bool
}

func (ect *ErrorContractTest) Run(t *testing.T) {
	t.Helper()
	t.Run(ect.Name, func(t *testing.T) {
		_, err := ect.Provider.Lookup(context.Background(), ect.Query)
		if err == nil {
			t.Fatal("expected error but got none")
		}

		if category := providers.GetCategory(err); category != ect.ExpectedError {
			t.Errorf("expected error category %s, got %s", ect.ExpectedError, category)
		}
		if isRetryable := providers.IsRetryable(err); isRetryable != ect.ExpectedRetry {
			t.Errorf("expected retryable=%v, got %v", ect.ExpectedRetry, isRetryable)
		}
	})
}
