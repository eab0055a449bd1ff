// Package provider holds the catalog of supported AI vendors and the table that maps
// model identifiers to the vendor that serves them.
package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Provider describes an AI vendor a user can bring a key for.
type Provider struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Placeholder string `json:"placeholder"`
	HelpText    string `json:"helpText"`
}

// Model is a selectable chat model.
type Model struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProviderID string `json:"provider"`
}

const (
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Gemini    = "gemini"
)

var builtinProviders = []Provider{
	{
		ID:          OpenAI,
		Name:        "OpenAI",
		Description: "GPT-4, GPT-3.5 Turbo",
		Placeholder: "sk-...",
		HelpText:    "Get your API key from https://platform.openai.com/api-keys",
	},
	{
		ID:          Anthropic,
		Name:        "Anthropic",
		Description: "Claude 3",
		Placeholder: "sk-ant-...",
		HelpText:    "Get your API key from https://console.anthropic.com/",
	},
	{
		ID:          Gemini,
		Name:        "Google AI",
		Description: "Gemini Pro",
		Placeholder: "AIza...",
		HelpText:    "Get your API key from https://makersuite.google.com/app/apikey",
	},
}

var builtinModels = []Model{
	{ID: "gpt-4", Name: "GPT-4", ProviderID: OpenAI},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", ProviderID: OpenAI},
	{ID: "claude-3", Name: "Claude 3", ProviderID: Anthropic},
	{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", ProviderID: Gemini},
}

// aliases maps alternative provider ids onto catalog ids.
var aliases = map[string]string{
	"google": Gemini,
}

// Registry is an immutable view of the catalog plus any configured model mappings.
type Registry struct {
	providers       []Provider
	byID            map[string]Provider
	models          []Model
	modelProvider   map[string]string
	defaultProvider string
}

// NewRegistry builds a registry. defaultProvider is returned for unknown models;
// extra adds model to provider mappings on top of the built-in table.
func NewRegistry(defaultProvider string, extra map[string]string) (*Registry, error) {
	r := &Registry{
		providers:     append([]Provider(nil), builtinProviders...),
		byID:          make(map[string]Provider, len(builtinProviders)),
		models:        append([]Model(nil), builtinModels...),
		modelProvider: make(map[string]string, len(builtinModels)+len(extra)),
	}
	for _, p := range r.providers {
		r.byID[p.ID] = p
	}
	for _, m := range r.models {
		r.modelProvider[m.ID] = m.ProviderID
	}

	def := r.Normalize(defaultProvider)
	if _, ok := r.byID[def]; !ok {
		return nil, fmt.Errorf("unknown default provider: %q", defaultProvider)
	}
	r.defaultProvider = def

	extraIDs := make([]string, 0, len(extra))
	for id := range extra {
		extraIDs = append(extraIDs, id)
	}
	sort.Strings(extraIDs)
	for _, modelID := range extraIDs {
		pid := r.Normalize(extra[modelID])
		if _, ok := r.byID[pid]; !ok {
			return nil, fmt.Errorf("model %q maps to unknown provider %q", modelID, extra[modelID])
		}
		if _, builtin := r.modelProvider[modelID]; !builtin {
			r.models = append(r.models, Model{ID: modelID, Name: modelID, ProviderID: pid})
		} else {
			for i := range r.models {
				if r.models[i].ID == modelID {
					r.models[i].ProviderID = pid
				}
			}
		}
		r.modelProvider[modelID] = pid
	}
	return r, nil
}

// Normalize lower-cases a provider id and resolves aliases.
func Normalize(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if canonical, ok := aliases[id]; ok {
		return canonical
	}
	return id
}

// Normalize resolves a provider id the same way the package-level Normalize does.
func (r *Registry) Normalize(id string) string {
	return Normalize(id)
}

// Providers returns the catalog in display order.
func (r *Registry) Providers() []Provider {
	return append([]Provider(nil), r.providers...)
}

// Provider looks up a provider by id or alias.
func (r *Registry) Provider(id string) (Provider, bool) {
	p, ok := r.byID[r.Normalize(id)]
	return p, ok
}

// Models returns the selectable models.
func (r *Registry) Models() []Model {
	return append([]Model(nil), r.models...)
}

// Model looks up a model by id.
func (r *Registry) Model(id string) (Model, bool) {
	for _, m := range r.models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// DefaultProvider is the provider assumed for unrecognized models.
func (r *Registry) DefaultProvider() string {
	return r.defaultProvider
}

// ProviderForModel maps a model id to its provider id, falling back to the default provider.
func (r *Registry) ProviderForModel(modelID string) string {
	if pid, ok := r.modelProvider[modelID]; ok {
		return pid
	}
	return r.defaultProvider
}

// DisplayName returns the provider's human name, or the id itself when it is not in the catalog.
func (r *Registry) DisplayName(id string) string {
	if p, ok := r.Provider(id); ok {
		return p.Name
	}
	return id
}
