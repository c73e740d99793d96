package modellist

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Type identifies the chat-completions API family a provider implements.
type Type string

// TypeOpenAI is the only family autodoc speaks: POST {base}/chat/completions with the OpenAI request shape.
const TypeOpenAI Type = "openai"

// ProviderID is the stable machine identifier of a provider (ex: "openai").
type ProviderID string

// ProviderIDCustom has no endpoint of its own; the base URL must come from configuration.
const ProviderIDCustom ProviderID = "custom"

// Model is one model a provider serves.
type Model struct {
	ID               string `json:"id"`   // ID is the identifier sent in requests.
	Name             string `json:"name"` // Name is for display.
	ContextWindow    int64  `json:"context_window"`
	DefaultMaxTokens int64  `json:"default_max_tokens"`
	CanReason        bool   `json:"can_reason"` // CanReason models may prefix replies with a <think> block.
}

// Provider describes an inference provider: where it lives, how it authenticates, and which models it offers.
type Provider struct {
	Name string     `json:"name"`
	ID   ProviderID `json:"id"`
	Type Type       `json:"type"`

	APIEndpointURL string  `json:"api_endpoint_url"`           // Base URL; requests go to {APIEndpointURL}/chat/completions.
	APIKeyEnv      string  `json:"api_key,omitempty"`          // Env var typically holding the key, with a leading "$".
	APIEndpointEnv string  `json:"api_endpoint_env,omitempty"` // Env var that may override APIEndpointURL, with a leading "$".
	KeyOptional    bool    `json:"key_optional,omitempty"`     // KeyOptional providers accept requests without a key (ex: local servers).
	DefaultModelID string  `json:"default_model_id,omitempty"` // Must match an ID in Models.
	Models         []Model `json:"models,omitempty"`
}

// DefaultModel returns the provider's default model, or the zero Model if it has none.
func (p Provider) DefaultModel() Model {
	for _, m := range p.Models {
		if m.ID == p.DefaultModelID {
			return m
		}
	}
	return Model{}
}

var (
	getProvidersMutex sync.RWMutex
	cachedProviders   []Provider
)

// GetProviders returns the embedded providers. It is thread-safe, but the slice it returns MUST NOT be modified.
func GetProviders() []Provider {
	getProvidersMutex.RLock()
	if cachedProviders != nil {
		defer getProvidersMutex.RUnlock()
		return cachedProviders
	}
	getProvidersMutex.RUnlock()

	getProvidersMutex.Lock()
	defer getProvidersMutex.Unlock()

	if cachedProviders != nil {
		return cachedProviders
	}

	var out []Provider
	for _, c := range configs {
		if len(c.rawBytes) == 0 {
			panic(fmt.Errorf("empty config for %s", c.name))
		}

		var p Provider
		if err := json.Unmarshal(c.rawBytes, &p); err != nil {
			panic(fmt.Errorf("config %s: %w", c.name, err))
		}

		if err := checkInvariants(p); err != nil {
			panic(err)
		}

		out = append(out, p)
	}

	cachedProviders = out
	return cachedProviders
}

// FindProvider returns the provider with id, or false.
func FindProvider(id ProviderID) (Provider, bool) {
	for _, p := range GetProviders() {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// checkInvariants returns the first violation of:
//   - Name and ID are non-empty.
//   - APIEndpointURL is non-empty, except for the custom provider.
//   - Type is TypeOpenAI.
//   - DefaultModelID, if set, exists in Models.
func checkInvariants(p Provider) error {
	if p.Name == "" {
		return fmt.Errorf("provider has empty name (id=%q)", p.ID)
	}
	if p.ID == "" {
		return fmt.Errorf("provider %q has empty id", p.Name)
	}
	if p.ID != ProviderIDCustom && p.APIEndpointURL == "" {
		return fmt.Errorf("provider %q has empty api_endpoint_url", p.ID)
	}
	if p.Type != TypeOpenAI {
		return fmt.Errorf("provider %q has invalid type %q", p.ID, p.Type)
	}
	if p.DefaultModelID != "" && p.DefaultModel().ID == "" {
		return fmt.Errorf("provider %q default_model_id %q not found in models", p.ID, p.DefaultModelID)
	}
	return nil
}
