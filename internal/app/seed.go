package app

import (
	"context"
	"fmt"
	"log/slog"

	"covtrack/internal/config"
	"covtrack/internal/db/repository"
	"covtrack/internal/domain"
	"covtrack/internal/service/security"
)

// seedAdmin creates the bootstrap admin account. Idempotent: it does
// nothing when an admin already exists.
func seedAdmin(ctx context.Context, logger *slog.Logger, cfg *config.Config,
	users *repository.UserRepo, sec *security.Service) error {
	n, err := users.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}

	u, err := sec.CreateUser(ctx, cfg.AdminUser, "", cfg.AdminPass, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create %s: %w", cfg.AdminUser, err)
	}
	logger.Info("created bootstrap admin account", "username", u.Username)
	return nil
}
