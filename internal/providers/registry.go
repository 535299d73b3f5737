package providers

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the configured vision clients keyed by provider name.
type Registry struct {
	mu          sync.RWMutex
	clients     map[string]VisionClient
	defaultName string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]VisionClient)}
}

// Register adds a client under its own name. The first registered client
// becomes the default until SetDefault overrides it.
func (r *Registry) Register(client VisionClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.Name()] = client
	if r.defaultName == "" {
		r.defaultName = client.Name()
	}
}

// SetDefault selects the default client by name.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[name]; !ok {
		return fmt.Errorf("unknown provider %q", name)
	}
	r.defaultName = name
	return nil
}

// Get returns the client registered under name.
func (r *Registry) Get(name string) (VisionClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return client, nil
}

// Default returns the default client.
func (r *Registry) Default() (VisionClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.defaultName == "" {
		return nil, fmt.Errorf("no providers registered")
	}
	return r.clients[r.defaultName], nil
}

// ClientConfig configures one vision client in a RegistryConfig.
type ClientConfig struct {
	Type    string // "openrouter", "openai"
	APIKey  string // Already resolved, no ${ENV_VAR} references
	BaseURL string
	Model   string
	Enabled bool
}

// RegistryConfig is the provider section of the application config with
// API keys resolved.
type RegistryConfig struct {
	Providers map[string]ClientConfig
	// DefaultModel is used when a chat request does not name a model.
	DefaultModel string
}

// Reload replaces the registered clients from config. Unknown provider
// types are skipped. Safe to call while requests are in flight: clients
// already handed out keep working.
func (r *Registry) Reload(cfg RegistryConfig) {
	clients := make(map[string]VisionClient)
	defaultName := ""

	for name, pc := range cfg.Providers {
		if !pc.Enabled {
			continue
		}
		var client VisionClient
		switch pc.Type {
		case OpenRouterName:
			client = NewOpenRouterClient(OpenRouterConfig{
				APIKey:       pc.APIKey,
				BaseURL:      pc.BaseURL,
				DefaultModel: cfg.DefaultModel,
			})
		case OpenAIName:
			client = NewOpenAIClient(OpenAIConfig{
				APIKey:       pc.APIKey,
				BaseURL:      pc.BaseURL,
				DefaultModel: cfg.DefaultModel,
			})
		default:
			continue
		}
		clients[name] = client
		if defaultName == "" || name == OpenRouterName {
			defaultName = name
		}
	}

	r.mu.Lock()
	r.clients = clients
	r.defaultName = defaultName
	r.mu.Unlock()
}

// Names lists registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
