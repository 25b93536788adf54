package services

import "fmt"

// Endpoint is a framework-agnostic route specification. Handlers are bound
// by HTTP adapters keyed on OperationID.
type Endpoint struct {
	Path     string
	Method   string
	Metadata EndpointMetadata
}

type EndpointMetadata struct {
	OperationID string
	Description string
	Protected   bool
}

// BaseEndpoints returns the route specifications for the credential
// exchange API.
//
// Each endpoint is a template: adapters bind their own framework-specific
// handlers by OperationID, so multiple adapters (Fiber, net/http) can share
// the same definitions.
func BaseEndpoints() []Endpoint {
	return []Endpoint{
		{
			Path:   pathRegister,
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "register",
				Description: "Register a user with email, password, and role",
			},
		},
		{
			Path:   pathLogin,
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "login",
				Description: "Sign in a user using email and password",
			},
		},
		{
			Path:   pathLogout,
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "logout",
				Description: "Sign out the current user and invalidate the session",
				Protected:   true,
			},
		},
		{
			Path:   pathRefresh,
			Method: "POST",
			Metadata: EndpointMetadata{
				OperationID: "refresh",
				Description: "Rotate the current session token",
				Protected:   true,
			},
		},
		{
			Path:   pathMe,
			Method: "GET",
			Metadata: EndpointMetadata{
				OperationID: "getMe",
				Description: "Get the current user's identity",
				Protected:   true,
			},
		},
		{
			Path:   pathMe,
			Method: "PATCH",
			Metadata: EndpointMetadata{
				OperationID: "updateMe",
				Description: "Merge a partial profile update into the current identity",
				Protected:   true,
			},
		},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	// endpoints stores all registered endpoints keyed by "METHOD:PATH"
	endpoints map[string]*Endpoint
	order     []string
}

// NewEndpointRegistry creates a new registry with all base exchange
// endpoints pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*Endpoint),
	}

	base := BaseEndpoints()
	for i := range base {
		// base endpoints never conflict with each other
		_ = reg.register(&base[i])
	}

	return reg
}

// register adds a single endpoint to the registry with conflict detection.
// Returns error if an endpoint with the same METHOD:PATH already exists.
func (r *EndpointRegistry) register(ep *Endpoint) error {
	key := fmt.Sprintf("%s:%s", ep.Method, ep.Path)

	if _, exists := r.endpoints[key]; exists {
		return fmt.Errorf("endpoint conflict: %s %s already registered", ep.Method, ep.Path)
	}

	r.endpoints[key] = ep
	r.order = append(r.order, key)
	return nil
}

// RegisterExtra registers additional endpoints, e.g. from a deployment that
// mounts extra exchange routes. If any conflicts, nothing is registered.
func (r *EndpointRegistry) RegisterExtra(endpoints []Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		key := fmt.Sprintf("%s:%s", endpoints[i].Method, endpoints[i].Path)
		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("endpoint conflict: %s %s already registered", endpoints[i].Method, endpoints[i].Path)
		}
		if seen[key] {
			return fmt.Errorf("duplicate endpoint: %s %s", endpoints[i].Method, endpoints[i].Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		_ = r.register(&endpoints[i])
	}
	return nil
}

// Endpoints returns all registered endpoints in registration order.
func (r *EndpointRegistry) Endpoints() []*Endpoint {
	result := make([]*Endpoint, 0, len(r.endpoints))
	for _, key := range r.order {
		result = append(result, r.endpoints[key])
	}
	return result
}
