// Package session resolves the signed-in user's identity from a bearer token.
package session

import (
	"context"
	"log/slog"

	"github.com/tendant/simple-admin-console/pkg/auth"
	"github.com/tendant/simple-admin-console/pkg/domain"
)

// UserFetcher loads a user record from the backend.
type UserFetcher interface {
	GetUser(ctx context.Context, token, id string) (*domain.User, error)
}

// Reader turns a token into a Session.
type Reader struct {
	users  UserFetcher
	logger *slog.Logger
}

// NewReader creates a Reader.
func NewReader(users UserFetcher, logger *slog.Logger) *Reader {
	return &Reader{users: users, logger: logger}
}

// Resolve decodes the token's claims and fetches the authoritative user
// record. Role and tenant come from the fetched record, never from the
// claims. On any failure the error is logged and a Session with an empty
// role is returned, so no privileged UI is rendered.
func (r *Reader) Resolve(ctx context.Context, token string) *domain.Session {
	s := &domain.Session{Token: token}

	claims, err := auth.DecodeToken(token)
	if err != nil {
		r.logger.Warn("failed to decode token", "error", err)
		return s
	}
	s.UserID = claims.SubjectID()

	user, err := r.users.GetUser(ctx, token, s.UserID)
	if err != nil {
		r.logger.Warn("failed to fetch current user",
			"user_id", s.UserID,
			"error", err,
		)
		return s
	}

	s.TenantID = user.TenantID
	s.Role = user.Role
	s.Email = user.Email
	s.UserName = user.UserName
	return s
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (*domain.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*domain.Session)
	return s, ok && s != nil
}
