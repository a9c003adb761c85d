package gateways

import (
	"strings"

	"github.com/neocommerce/storefront/internal/config"
	"github.com/neocommerce/storefront/internal/payment/domain"
)

// Registry maps gateway names to factories. Gateways are constructed per
// call against the current credential snapshot.
type Registry struct {
	factories map[string]domain.GatewayFactory
}

func NewRegistry(factories ...domain.GatewayFactory) *Registry {
	registry := &Registry{factories: map[string]domain.GatewayFactory{}}
	for _, factory := range factories {
		if factory == nil {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(factory.Name()))
		if name == "" {
			continue
		}
		registry.factories[name] = factory
	}
	return registry
}

func (r *Registry) Exists(name string) bool {
	if r == nil {
		return false
	}
	name = strings.ToLower(strings.TrimSpace(name))
	_, ok := r.factories[name]
	return ok
}

func (r *Registry) New(name string, creds config.GatewayCredentials) (domain.Gateway, error) {
	if r == nil {
		return nil, domain.ErrGatewayNotFound
	}
	name = strings.ToLower(strings.TrimSpace(name))
	factory, ok := r.factories[name]
	if !ok {
		return nil, domain.ErrGatewayNotFound
	}
	return factory.New(creds)
}
