// Package recommend selects a product for a user message.
package recommend

import (
	"fmt"
	"strings"

	"github.com/kaiunlab/kaiun/internal/store"
)

// Policy names a matching strategy.
type Policy string

const (
	// PolicySubstring lower-cases the message and each product's
	// name+description and matches on symmetric containment. Useful for
	// short, keyword-like messages; long sentences rarely match.
	PolicySubstring Policy = "substring"
	// PolicyKeyword splits a product's keywords field on commas and
	// matches when the message contains a token or a token contains the
	// message.
	PolicyKeyword Policy = "keyword"
)

// Matcher picks the first product matching the message, in store row
// order. Earlier rows win ties: row order is the implicit priority.
type Matcher struct {
	policy Policy
}

// NewMatcher creates a matcher for the given policy.
func NewMatcher(policy Policy) (*Matcher, error) {
	switch policy {
	case PolicySubstring, PolicyKeyword:
		return &Matcher{policy: policy}, nil
	default:
		return nil, fmt.Errorf("unknown match policy: %q", policy)
	}
}

// Policy returns the configured policy name.
func (m *Matcher) Policy() Policy { return m.policy }

// Match returns the first matching product, or nil when no product
// matches.
func (m *Matcher) Match(text string, products []store.ProductRecord) *store.ProductRecord {
	for i := range products {
		if m.matches(text, products[i]) {
			return &products[i]
		}
	}
	return nil
}

func (m *Matcher) matches(text string, p store.ProductRecord) bool {
	switch m.policy {
	case PolicyKeyword:
		for _, token := range p.KeywordTokens() {
			if strings.Contains(text, token) || strings.Contains(token, text) {
				return true
			}
		}
		return false
	default:
		message := strings.ToLower(text)
		haystack := strings.ToLower(p.Name + " " + p.Description)
		return strings.Contains(haystack, message) || strings.Contains(message, haystack)
	}
}
