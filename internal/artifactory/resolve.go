package artifactory

import (
	"context"
	"fmt"
	"os"

	"github.com/davidobrien1985/deploymenthelper/internal/secrets"
)

// Environment overrides. When set and non-empty they win over both the
// parameter store and explicit arguments, so operators can patch a broken
// deployment without touching scripts or the store.
const (
	EnvAPIKey = "ARTIFACTORY_API_KEY"
	EnvHost   = "ARTIFACTORY_HOST"
)

// Parameter store entry names consulted in store mode. The API key entry is
// a SecureString and is fetched with decryption.
const (
	storeEntryAPIKey = "artifactory-api-key"
	storeEntryHost   = "artifactory-host"
)

// Credentials is the resolved pair the fetcher authenticates with. The API
// key is held only for the duration of the invocation and never logged.
type Credentials struct {
	APIKey   string
	Endpoint string
}

// ResolveOptions selects where Resolve takes the API key and host from.
// UseParameterStore switches between the managed store and the explicit
// APIKey/Endpoint arguments; environment overrides apply in either mode.
type ResolveOptions struct {
	UseParameterStore bool
	Store             secrets.Store

	// Used when UseParameterStore is false.
	APIKey   string
	Endpoint string
}

// Resolve applies the precedence chain for each field independently:
// environment override first, then the parameter store or the explicit
// argument depending on the selected mode.
func Resolve(ctx context.Context, opts ResolveOptions) (Credentials, error) {
	creds := Credentials{
		APIKey:   os.Getenv(EnvAPIKey),
		Endpoint: os.Getenv(EnvHost),
	}

	if creds.APIKey != "" && creds.Endpoint != "" {
		return creds, nil
	}

	if opts.UseParameterStore {
		if opts.Store == nil {
			return Credentials{}, fmt.Errorf("resolve credentials: no secret store configured")
		}
		if creds.APIKey == "" {
			v, err := opts.Store.Get(ctx, storeEntryAPIKey, true)
			if err != nil {
				return Credentials{}, fmt.Errorf("resolve api key: %w", err)
			}
			creds.APIKey = v
		}
		if creds.Endpoint == "" {
			v, err := opts.Store.Get(ctx, storeEntryHost, false)
			if err != nil {
				return Credentials{}, fmt.Errorf("resolve host: %w", err)
			}
			creds.Endpoint = v
		}
		return creds, nil
	}

	if creds.APIKey == "" {
		creds.APIKey = opts.APIKey
	}
	if creds.Endpoint == "" {
		creds.Endpoint = opts.Endpoint
	}
	return creds, nil
}
