package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

var ErrNoChoices = errors.New("chat completion returned no choices")

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// Client performs a single chat completion and returns the first choice's text.
type Client interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// Provider is a named client bound to the model it should be called with.
type Provider struct {
	Name   string
	Model  string
	Client Client
}

type Registry struct {
	providers   map[string]Provider
	defaultName string
}

// NewRegistry creates a registry whose fallback provider is defaultName.
func NewRegistry(defaultName string) *Registry {
	return &Registry{
		providers:   make(map[string]Provider),
		defaultName: strings.ToLower(defaultName),
	}
}

func (r *Registry) Register(name, model string, client Client) {
	key := strings.ToLower(name)
	r.providers[key] = Provider{Name: key, Model: model, Client: client}
}

func (r *Registry) Lookup(name string) (Provider, bool) {
	p, ok := r.providers[strings.ToLower(name)]
	return p, ok
}

// Resolve returns the provider registered under name, falling back to the
// default provider for an empty or unknown name.
func (r *Registry) Resolve(name string) (Provider, error) {
	if name != "" {
		if p, ok := r.Lookup(name); ok {
			return p, nil
		}
	}
	p, ok := r.providers[r.defaultName]
	if !ok {
		return Provider{}, fmt.Errorf("no provider registered for %q", r.defaultName)
	}
	return p, nil
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
