package modellist

import (
	_ "embed"
)

//go:embed config/openai.json
var openAIConfig []byte

//go:embed config/deepseek.json
var deepseekConfig []byte

//go:embed config/openrouter.json
var openrouterConfig []byte

//go:embed config/groq.json
var groqConfig []byte

//go:embed config/xai.json
var xaiConfig []byte

//go:embed config/ollama.json
var ollamaConfig []byte

//go:embed config/custom.json
var customConfig []byte

// configProvider is one embedded provider document and the name it is listed under.
type configProvider struct {
	rawBytes []byte
	name     string
}

// configs defines the iteration order of GetProviders and GetProviderNames.
var configs = []configProvider{
	{rawBytes: openAIConfig, name: "openai"},
	{rawBytes: deepseekConfig, name: "deepseek"},
	{rawBytes: openrouterConfig, name: "openrouter"},
	{rawBytes: groqConfig, name: "groq"},
	{rawBytes: xaiConfig, name: "xai"},
	{rawBytes: ollamaConfig, name: "ollama"},
	{rawBytes: customConfig, name: "custom"},
}

// GetProviderNames returns the identifiers of all embedded providers in catalog order.
func GetProviderNames() []string {
	var out []string
	for _, c := range configs {
		out = append(out, c.name)
	}
	return out
}
