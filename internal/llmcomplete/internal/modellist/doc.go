// Package modellist is the embedded catalog of chat-completion providers autodoc can talk to:
//
//	modellist.GetProviders()
//
// It only describes providers (endpoint, key env var, default model). How a request is sent lives in llmcomplete.
//
// To add a provider, drop a JSON document in config/ and list it in config.go.
package modellist
