package source

import (
	"fmt"

	"github.com/ambrydata/mpr/errs"
)

// CredentialCallback resolves access credentials for a host/netloc,
// consumed by remote-fetching source collaborators (spec.md §6).
type CredentialCallback func(netloc string) (map[string]string, error)

// RequireFields checks that every field in required is present and
// non-empty in creds, returning errs.MissingCredentials naming the first
// missing one.
func RequireFields(creds map[string]string, required []string) error {
	for _, f := range required {
		if creds[f] == "" {
			return fmt.Errorf("source: missing credential field %q: %w", f, errs.MissingCredentials)
		}
	}
	return nil
}
