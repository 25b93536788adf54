package lexauth

import (
	"context"
	"errors"
	"testing"

	"github.com/legalaipro/lexauth/services"
)

// dummy HTTP adapter
type dummyHTTP struct {
	registered bool
}

func (d *dummyHTTP) RegisterRoutes(auth *Auth) error {
	d.registered = true
	return nil
}

func TestNew_WiresEverything(t *testing.T) {
	adapter := &dummyHTTP{}
	auth, err := New(Config{
		Database: services.NewFakeStorage(),
		HTTP:     adapter,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if auth.Accounts == nil || auth.Sessions == nil || auth.Registry == nil {
		t.Fatalf("incomplete wiring: %+v", auth)
	}
	if !adapter.registered {
		t.Error("RegisterRoutes never called")
	}
}

func TestNew_RequiredConfig(t *testing.T) {
	if _, err := New(Config{HTTP: &dummyHTTP{}}); !errors.Is(err, ErrStorageRequired) {
		t.Errorf("missing database: err = %v", err)
	}
	if _, err := New(Config{Database: services.NewFakeStorage()}); !errors.Is(err, ErrHTTPRequired) {
		t.Errorf("missing http adapter: err = %v", err)
	}
}

func TestNew_DisableCache(t *testing.T) {
	storage := services.NewFakeStorage()
	auth, err := New(Config{
		Database:     storage,
		HTTP:         &dummyHTTP{},
		DisableCache: true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := auth.Sessions.Create("user-1", "127.0.0.1", "ua")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// With no cache, a storage failure surfaces directly on Verify.
	storage.GetErr = ErrSessionNotFound
	if _, err := auth.Sessions.Verify(result.Token); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound with cache disabled, got %v", err)
	}
}

func TestNew_DefaultCacheServesVerify(t *testing.T) {
	storage := services.NewFakeStorage()
	auth, err := New(Config{
		Database: storage,
		HTTP:     &dummyHTTP{},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	result, err := auth.Sessions.Create("user-1", "127.0.0.1", "ua")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The default in-memory cache answers Verify even when storage fails.
	storage.GetErr = errors.New("storage down")
	if _, err := auth.Sessions.Verify(result.Token); err != nil {
		t.Fatalf("Verify should be served from cache: %v", err)
	}
}

func TestNewClient(t *testing.T) {
	t.Run("requires an exchange", func(t *testing.T) {
		if _, err := NewClient(ClientConfig{}); !errors.Is(err, ErrExchangeRequired) {
			t.Errorf("err = %v, want ErrExchangeRequired", err)
		}
	})

	t.Run("wires store and flow", func(t *testing.T) {
		exchange := services.NewFakeExchange()
		client, err := NewClient(ClientConfig{Exchange: exchange})
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
		if client.Store == nil || client.Flow == nil {
			t.Fatalf("incomplete client: %+v", client)
		}

		// nil vault means ephemeral sessions, not errors
		if err := client.Flow.Logout(context.Background()); err != nil {
			t.Errorf("Logout with nil vault: %v", err)
		}
	})

	t.Run("builds http exchange from URL", func(t *testing.T) {
		client, err := NewClient(ClientConfig{ExchangeURL: "http://localhost:8080"})
		if err != nil {
			t.Fatalf("NewClient: %v", err)
		}
		if client.Flow == nil {
			t.Fatal("no flow")
		}
	})
}
