package auth

import (
	"context"
	"fmt"

	"github.com/abdusco/linkhub/internal/repo"
	"github.com/rs/zerolog/log"
)

// DefaultPassword is set on the admin account when it is first created,
// unless a different one is configured.
const DefaultPassword = "admin123"

type adminStore interface {
	Get(ctx context.Context) (*repo.AdminRow, error)
	CreateIfAbsent(ctx context.Context, hash, salt string) (bool, error)
	SetPassword(ctx context.Context, hash, salt string) (bool, error)
}

// CredentialStore verifies and rotates the single admin password.
type CredentialStore struct {
	admins          adminStore
	defaultPassword string
}

func NewCredentialStore(admins adminStore, defaultPassword string) *CredentialStore {
	if defaultPassword == "" {
		defaultPassword = DefaultPassword
	}
	return &CredentialStore{admins: admins, defaultPassword: defaultPassword}
}

func (s *CredentialStore) InitializeIfAbsent(ctx context.Context) error {
	existing, err := s.admins.Get(ctx)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	salt, err := NewSalt()
	if err != nil {
		return err
	}
	if _, err := s.admins.CreateIfAbsent(ctx, HashPassword(s.defaultPassword, salt), salt); err != nil {
		return err
	}
	return nil
}

// Verify reports whether password matches the stored credential. It is false
// when no credential exists.
func (s *CredentialStore) Verify(ctx context.Context, password string) (bool, error) {
	admin, err := s.admins.Get(ctx)
	if err != nil {
		return false, err
	}
	if admin == nil {
		log.Warn().Msg("login attempted before admin credential was initialized")
		return false, nil
	}
	return checkPassword(password, admin.PasswordHash, admin.Salt), nil
}

// ChangePassword replaces the password with a freshly salted hash of next
// when current is correct.
func (s *CredentialStore) ChangePassword(ctx context.Context, current, next string) (bool, error) {
	ok, err := s.Verify(ctx, current)
	if err != nil || !ok {
		return false, err
	}

	salt, err := NewSalt()
	if err != nil {
		return false, err
	}

	updated, err := s.admins.SetPassword(ctx, HashPassword(next, salt), salt)
	if err != nil {
		return false, fmt.Errorf("failed to change password: %w", err)
	}

	log.Info().Bool("updated", updated).Msg("admin password changed")
	return updated, nil
}
