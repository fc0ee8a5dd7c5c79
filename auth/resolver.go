package auth

import (
	"devhub/domain"
	"log/slog"
)

// Resolver maps a bearer token to an identity. It is pure and safe for
// concurrent use from many connections.
//
// Resolution never fails loudly: an absent, malformed, or expired token
// downgrades to domain.Anonymous, because an unauthenticated user may
// still observe a session anonymously.
type Resolver struct {
	secret []byte
	log    *slog.Logger
}

func NewResolver(secret []byte, log *slog.Logger) Resolver {
	return Resolver{secret: secret, log: log}
}

func (r Resolver) Resolve(token string) domain.Identity {
	if token == "" {
		return domain.Anonymous
	}

	claims, err := parseToken(r.secret, token)
	if err != nil {
		r.log.Debug("token rejected, resolving as anonymous", "error", err)
		return domain.Anonymous
	}
	if claims.Subject == "" {
		return domain.Anonymous
	}
	return domain.Identity{Email: claims.Subject}
}
