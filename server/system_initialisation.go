package server

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/simaris-dev/simaris-auth/internal/config"
	apperrors "github.com/simaris-dev/simaris-auth/internal/errors"
	"github.com/simaris-dev/simaris-auth/users"
)

// InitialiseSystem ensures the seeded super admin account exists. Without it
// a fresh deployment has nobody who can manage users. Idempotent.
func (s *Server) InitialiseSystem(cfg config.Config) error {
	if cfg.SeedAdminEmail == "" {
		s.log.Debug().Msg("no seed admin configured, skipping bootstrap")
		return nil
	}

	existing, err := s.users.GetByEmail(cfg.SeedAdminEmail)
	if err == nil && existing.IsSuperAdmin() {
		return nil
	}
	if err != nil && !apperrors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("[Server InitialiseSystem] failed to look up seed admin: %w", err)
	}

	password := cfg.SeedAdminPassword
	generated := false
	if password == "" {
		password = users.RandomPassword()
		generated = true
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to hash password: %w", err)
	}

	admin := &users.User{
		ID:           uuid.New().String(),
		Email:        users.NormalizeEmail(cfg.SeedAdminEmail),
		Name:         "System Administrator",
		PasswordHash: passwordHash,
		Roles:        []users.RoleType{users.RoleSuperAdmin, users.RoleAdmin},
		CreatedAt:    time.Now(),
	}
	if existing != nil {
		// Account exists but without super admin rights; promote it and
		// keep its identity.
		admin.ID = existing.ID
		admin.Name = existing.Name
		admin.CreatedAt = existing.CreatedAt
	}

	if err := s.users.Upsert(admin); err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to create super admin: %w", err)
	}

	if generated {
		s.log.Info().
			Str("email", admin.Email).
			Str("password", password).
			Msg("seeded super admin with generated password, change it after first login")
	} else {
		s.log.Info().Str("email", admin.Email).Msg("seeded super admin")
	}
	return nil
}
