// Package secrets abstracts the managed secret store consulted during
// credential resolution, so callers can inject a fake in tests.
package secrets

import "context"

// Store returns named secret/config values. Implementations must honor the
// decrypt flag: true requests the unsealed secret value.
type Store interface {
	Get(ctx context.Context, name string, decrypt bool) (string, error)
}
