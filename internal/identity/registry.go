// Package identity resolves allow-listed bearer tokens to submitter
// identities.
package identity

import "strings"

// Registry maps opaque bearer tokens to submitter identities. It is built
// once from configuration, immutable afterwards, and safe for concurrent
// reads.
type Registry struct {
	byToken map[string]string
}

// NewRegistry builds a registry from the allow-listed submission tokens.
// Issued tokens have the form <bot_name>_<random>, so the identity for a
// token is its prefix before the first underscore; a token without one is
// its own identity. Blank entries are skipped.
func NewRegistry(tokens []string) *Registry {
	byToken := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		byToken[tok] = identityFor(tok)
	}
	return &Registry{byToken: byToken}
}

// Lookup returns the identity bound to token. The boolean reports whether
// the token is allow-listed; unknown tokens yield no identity at all.
func (r *Registry) Lookup(token string) (string, bool) {
	id, ok := r.byToken[token]
	return id, ok
}

// Len returns the number of allow-listed tokens.
func (r *Registry) Len() int {
	return len(r.byToken)
}

func identityFor(token string) string {
	if i := strings.Index(token, "_"); i > 0 {
		return token[:i]
	}
	return token
}
