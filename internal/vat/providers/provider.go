package providers

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

//go:generate mockgen -source=provider.go -destination=mocks/mocks.go -package=mocks Provider

// Protocol defines the supported communication protocols for registry providers
type Protocol string

const (
	ProtocolHTTP Protocol = "http"
	ProtocolSOAP Protocol = "soap"
)

// ProviderType identifies the kind of registry a provider queries
type ProviderType string

const (
	// ProviderTypeNational is a single country's taxpayer register.
	ProviderTypeNational ProviderType = "national_registry"
	// ProviderTypeVIES is the EU cross-border VAT exchange.
	ProviderTypeVIES ProviderType = "vies"
)

// Capabilities describes what a provider supports
type Capabilities struct {
	Protocol  Protocol
	Type      ProviderType
	Countries []string // ISO 3166-1 alpha-2, upper case
	Version   string   // Provider API version
}

// Covers reports whether the provider answers for country.
func (c Capabilities) Covers(country string) bool {
	return slices.Contains(c.Countries, strings.ToUpper(country))
}

// Query is a lookup request. VATNumber is normalized and carries no country prefix.
type Query struct {
	CountryCode string
	VATNumber   string
	Date        time.Time
}

// CompanyDetails are the registered name and address of a taxpayer.
type CompanyDetails struct {
	Name            string `json:"name"`
	City            string `json:"city"`
	StreetName      string `json:"street_name"`
	BuildingNumber  string `json:"building_number"`
	ApartmentNumber string `json:"apartment_number"`
	PostalCode      string `json:"postal_code"`
}

// IsZero reports whether no detail was returned.
func (c CompanyDetails) IsZero() bool {
	return c == CompanyDetails{}
}

// Evidence is the normalized result from any provider
type Evidence struct {
	ProviderID     string
	ProviderType   ProviderType
	Valid          bool   // the registry confirms an active registration
	VerificationID string // registry request identifier, may be empty
	Company        CompanyDetails
	CheckedAt      time.Time
	Metadata       map[string]string // raw status values, request dates
}

// Provider is the interface all VAT registries implement
type Provider interface {
	// ID returns a unique identifier for this provider instance
	ID() string

	// Capabilities returns what this provider supports
	Capabilities() Capabilities

	// Lookup checks one VAT number. A registration the registry does not
	// know is either Evidence{Valid: false} or an ErrorNotFound ProviderError,
	// depending on how the registry reports it.
	Lookup(ctx context.Context, q Query) (*Evidence, error)

	// Health checks if the provider is reachable
	Health(ctx context.Context) error
}

// ProviderRegistry maintains all registered providers. Safe for concurrent use.
type ProviderRegistry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewProviderRegistry creates a new empty registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry
func (r *ProviderRegistry) Register(p Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := p.ID()
	if _, exists := r.providers[id]; exists {
		return fmt.Errorf("provider %s already registered", id)
	}
	r.providers[id] = p
	return nil
}

// Get retrieves a provider by ID
func (r *ProviderRegistry) Get(id string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	return p, ok
}

// All returns all registered providers ordered by ID
func (r *ProviderRegistry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		result = append(result, p)
	}
	slices.SortFunc(result, func(a, b Provider) int { return strings.Compare(a.ID(), b.ID()) })
	return result
}

// ForCountry returns the provider that should answer for country.
// National registries win over VIES; among equals, the provider covering
// fewer countries is the more specific one.
func (r *ProviderRegistry) ForCountry(country string) (Provider, bool) {
	var best Provider
	for _, p := range r.All() {
		caps := p.Capabilities()
		if !caps.Covers(country) {
			continue
		}
		if best == nil || moreSpecific(caps, best.Capabilities()) {
			best = p
		}
	}
	return best, best != nil
}

func moreSpecific(a, b Capabilities) bool {
	aNational := a.Type == ProviderTypeNational
	bNational := b.Type == ProviderTypeNational
	if aNational != bNational {
		return aNational
	}
	return len(a.Countries) < len(b.Countries)
}
