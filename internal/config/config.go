// Package config loads autodoc's settings from a cascade of YAML files, environment variables, and command line overrides, and validates the
// result.
package config

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/codalotl/autodoc/internal/collect"
	"github.com/codalotl/autodoc/internal/llmcomplete"
	"github.com/codalotl/autodoc/internal/metrics"
	"github.com/codalotl/autodoc/internal/q/health"
)

// Config is the effective configuration. YAML keys are the yaml tags.
type Config struct {
	Provider string `yaml:"provider" validate:"required"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty" validate:"omitempty,url"`
	APIKey   string `yaml:"api_key,omitempty"`

	Temperature       float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens         int           `yaml:"max_tokens" validate:"gte=1"`
	MaxRetries        int           `yaml:"max_retries" validate:"gte=1,lte=10"`
	BaseWait          time.Duration `yaml:"base_wait" validate:"gte=0"`
	RequestTimeout    time.Duration `yaml:"request_timeout" validate:"gte=0"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0"`

	CommentLanguage string `yaml:"comment_language" validate:"required"`

	DocumentTypes         bool `yaml:"document_types"`
	DocumentFunctions     bool `yaml:"document_functions"`
	DocumentTestFunctions bool `yaml:"document_test_functions"`
	DocumentFields        bool `yaml:"document_fields"`
	SkipExisting          bool `yaml:"skip_existing"`

	OptimizeTypeSnippets bool `yaml:"optimize_type_snippets"`
	MaxSnippetLines      int  `yaml:"max_snippet_lines" validate:"gte=0"`

	// Providence records, per YAML key, the source that last set it.
	Providence map[string]Providence `yaml:"-"`
}

// Providence names where a value came from.
type Providence struct {
	SourceType       string // "default", "yaml_file", "env", or "flag"
	SourceIdentifier string // file path or variable name; "" for defaults and flags
}

func (p Providence) String() string {
	if p.SourceIdentifier == "" {
		return p.SourceType
	}
	return p.SourceType + " " + p.SourceIdentifier
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:              llmcomplete.DefaultProviderID,
		Temperature:           llmcomplete.DefaultTemperature,
		MaxTokens:             llmcomplete.DefaultMaxTokens,
		MaxRetries:            llmcomplete.DefaultMaxRetries,
		BaseWait:              llmcomplete.DefaultBaseWait,
		RequestTimeout:        60 * time.Second,
		CommentLanguage:       "English",
		DocumentTypes:         true,
		DocumentFunctions:     true,
		DocumentTestFunctions: true,
		DocumentFields:        true,
		OptimizeTypeSnippets:  true,
		MaxSnippetLines:       collect.DefaultMaxSnippetLines,
	}
}

// Source returns the providence of key, or the zero Providence if nothing set it.
func (c Config) Source(key string) Providence {
	return c.Providence[key]
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks value ranges and that the provider is in the catalog.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = describe(fe)
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !knownProvider(c.Provider) {
		return fmt.Errorf("invalid configuration: unknown provider %q", c.Provider)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "url":
		return fe.Field() + " must be a URL"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}

func knownProvider(id string) bool {
	for _, p := range llmcomplete.Providers() {
		if p.ID == id {
			return true
		}
	}
	return false
}

// LLM returns the generation client configuration.
func (c Config) LLM(ctx health.Ctx, m *metrics.Metrics) llmcomplete.Config {
	return llmcomplete.Config{
		Ctx:               ctx,
		Provider:          c.Provider,
		Model:             c.Model,
		BaseURL:           c.BaseURL,
		APIKey:            c.APIKey,
		Temperature:       c.Temperature,
		MaxTokens:         c.MaxTokens,
		MaxRetries:        c.MaxRetries,
		BaseWait:          c.BaseWait,
		RequestTimeout:    c.RequestTimeout,
		RequestsPerMinute: c.RequestsPerMinute,
		Metrics:           m,
	}
}

// Collect returns the collector options.
func (c Config) Collect(ctx health.Ctx) collect.Options {
	return collect.Options{
		Ctx:                  ctx,
		Types:                c.DocumentTypes,
		Functions:            c.DocumentFunctions,
		TestFunctions:        c.DocumentTestFunctions,
		Fields:               c.DocumentFields,
		SkipExisting:         c.SkipExisting,
		OptimizeTypeSnippets: c.OptimizeTypeSnippets,
		MaxSnippetLines:      c.MaxSnippetLines,
	}
}

// Redacted returns a copy with the API key masked.
func (c Config) Redacted() Config {
	if c.APIKey != "" {
		c.APIKey = "********"
	}
	return c
}

// WriteYAML writes the redacted configuration to w. When withSources is set, each line is followed by a comment naming the value's source.
func (c Config) WriteYAML(w io.Writer, withSources bool) error {
	var doc yaml.Node
	if err := doc.Encode(c.Redacted()); err != nil {
		return err
	}
	if withSources {
		for i := 0; i+1 < len(doc.Content); i += 2 {
			key := doc.Content[i].Value
			if p, ok := c.Providence[key]; ok {
				doc.Content[i+1].LineComment = p.String()
			}
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}
