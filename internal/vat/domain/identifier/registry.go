package identifier

import (
	"strings"
	"sync"
)

// Registry maps country codes to rules. Lookups are case-insensitive and
// ignore surrounding whitespace. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	rules    map[string]Rule
	fallback Rule
}

// NewRegistry returns an empty registry whose fallback is DefaultRule.
func NewRegistry() *Registry {
	return &Registry{
		rules:    make(map[string]Rule),
		fallback: DefaultRule,
	}
}

// DefaultRegistry returns a registry with the built-in country rules.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("PL", PolishNIPRule)
	return r
}

func countryKey(country string) string {
	return strings.ToUpper(strings.TrimSpace(country))
}

// Register sets the rule for country, replacing any previous one.
// A nil rule removes the country's specific rule.
func (r *Registry) Register(country string, rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := countryKey(country)
	if rule == nil {
		delete(r.rules, key)
		return
	}
	r.rules[key] = rule
}

// SetFallback replaces the rule used for unregistered countries.
func (r *Registry) SetFallback(rule Rule) {
	if rule == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = rule
}

// RuleFor returns the country's specific rule.
func (r *Registry) RuleFor(country string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[countryKey(country)]
	return rule, ok
}

func (r *Registry) HasSpecificRule(country string) bool {
	_, ok := r.RuleFor(country)
	return ok
}

func (r *Registry) ruleOrFallback(country string) Rule {
	if rule, ok := r.RuleFor(country); ok {
		return rule
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.fallback
}
