package llmcomplete

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/codalotl/autodoc/internal/llmcomplete/internal/modellist"
)

// DefaultProviderID is used when Config.Provider is empty.
const DefaultProviderID = "openai"

// ProviderInfo describes a catalog provider for listings.
type ProviderInfo struct {
	ID           string
	Name         string
	BaseURL      string // empty for providers whose URL must be configured
	DefaultModel string
	KeyEnv       string // env var name without "$"; empty if none
	KeyRequired  bool
}

// Providers lists the catalog in its stable order.
func Providers() []ProviderInfo {
	var out []ProviderInfo
	for _, p := range modellist.GetProviders() {
		out = append(out, ProviderInfo{
			ID:           string(p.ID),
			Name:         p.Name,
			BaseURL:      p.APIEndpointURL,
			DefaultModel: p.DefaultModelID,
			KeyEnv:       strings.TrimPrefix(p.APIKeyEnv, "$"),
			KeyRequired:  !p.KeyOptional,
		})
	}
	return out
}

// chatRequest is one chat completion: a system and a user message.
type chatRequest struct {
	system      string
	user        string
	model       string
	temperature float64
	maxTokens   int
}

// chatReply is the first choice of a completion. Only text is ever used as a comment; refusal is kept for logging.
type chatReply struct {
	text    string
	refusal string
}

// sender talks to one backend. Errors it returns are already classified (*Error).
type sender interface {
	send(ctx context.Context, req chatRequest) (chatReply, error)
	available(ctx context.Context) error
}

// endpoint is a provider with its configuration resolved.
type endpoint struct {
	provider   modellist.Provider
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type factory func(ep endpoint) sender

// factories maps each API family to the constructor of its sender. Every catalog provider is served by the factory of its type.
var factories = map[modellist.Type]factory{
	modellist.TypeOpenAI: newOpenAISender,
}

// factoryFor returns the provider registered under id and its sender factory.
func factoryFor(id string) (modellist.Provider, factory, error) {
	if id == "" {
		id = DefaultProviderID
	}
	p, ok := modellist.FindProvider(modellist.ProviderID(id))
	if !ok {
		return modellist.Provider{}, nil, configErr(fmt.Sprintf("unknown provider %q (known: %s)", id, strings.Join(modellist.GetProviderNames(), ", ")))
	}
	f, ok := factories[p.Type]
	if !ok {
		return modellist.Provider{}, nil, configErr(fmt.Sprintf("provider %q has unsupported API type %q", id, p.Type))
	}
	return p, f, nil
}

// resolveEndpoint applies cfg's overrides to the provider's catalog entry. Precedence for each value: explicit config, then the provider's env var, then the
// catalog default.
func resolveEndpoint(cfg Config) (endpoint, error) {
	p, _, err := factoryFor(cfg.Provider)
	if err != nil {
		return endpoint{}, err
	}

	ep := endpoint{provider: p, httpClient: cfg.HTTPClient}

	ep.baseURL = cfg.BaseURL
	if ep.baseURL == "" {
		ep.baseURL = getEnvWithPossibleDollar(p.APIEndpointEnv)
	}
	if ep.baseURL == "" {
		ep.baseURL = p.APIEndpointURL
	}
	if ep.baseURL == "" {
		return endpoint{}, configErr(fmt.Sprintf("provider %q needs a base URL", p.ID))
	}
	u, err := url.Parse(ep.baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return endpoint{}, configErr(fmt.Sprintf("invalid base URL %q", ep.baseURL))
	}

	ep.apiKey = cfg.APIKey
	if ep.apiKey == "" {
		ep.apiKey = getEnvWithPossibleDollar(p.APIKeyEnv)
	}
	if ep.apiKey == "" && !p.KeyOptional {
		hint := "api_key"
		if p.APIKeyEnv != "" {
			hint = strings.TrimPrefix(p.APIKeyEnv, "$") + " or api_key"
		}
		return endpoint{}, configErr(fmt.Sprintf("no API key for provider %q; set %s", p.ID, hint))
	}

	ep.model = cfg.Model
	if ep.model == "" {
		ep.model = p.DefaultModelID
	}
	if ep.model == "" {
		return endpoint{}, configErr(fmt.Sprintf("no model configured for provider %q", p.ID))
	}

	return ep, nil
}

func getEnvWithPossibleDollar(key string) string {
	envVar := strings.TrimPrefix(key, "$")
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}
