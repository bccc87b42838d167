package db

import (
	"context"

	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/platform/config"
	"shiftdesk/internal/platform/logging"
)

type CredentialFinder interface {
	FindCredential(ctx context.Context, email string) (auth.Credential, error)
}

type Provisioner interface {
	Provision(ctx context.Context, in staff.NewEmployee) (staff.Employee, error)
}

type AreaSyncer interface {
	SyncAreas(ctx context.Context, areas []roster.Area) error
}

// Seed makes sure the configured areas and the owner account exist. It is
// safe to run on every start.
func Seed(ctx context.Context, cfg config.Config, creds CredentialFinder, employees Provisioner, areas AreaSyncer, logger *zap.Logger) error {
	logger = logging.OrNop(logger)
	if err := ensureAreas(ctx, cfg, areas); err != nil {
		return err
	}
	return ensureOwner(ctx, cfg, creds, employees, logger)
}

func ensureAreas(ctx context.Context, cfg config.Config, areas AreaSyncer) error {
	out := make([]roster.Area, 0, len(cfg.Areas))
	for _, a := range cfg.Areas {
		out = append(out, roster.Area{ID: a.ID, Name: a.Name, Color: a.Color})
	}
	return areas.SyncAreas(ctx, out)
}

func ensureOwner(ctx context.Context, cfg config.Config, creds CredentialFinder, employees Provisioner, logger *zap.Logger) error {
	if cfg.SeedOwnerEmail == "" {
		return nil
	}
	_, err := creds.FindCredential(ctx, cfg.SeedOwnerEmail)
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return err
	}
	if cfg.SeedOwnerPassword == "" {
		logger.Warn("owner account not seeded: SEED_OWNER_PASSWORD is empty", zap.String("email", cfg.SeedOwnerEmail))
		return nil
	}
	emp, err := employees.Provision(ctx, staff.NewEmployee{
		FullName: cfg.SeedOwnerName,
		Email:    cfg.SeedOwnerEmail,
		Role:     auth.RoleOwner,
		Password: cfg.SeedOwnerPassword,
	})
	if err != nil {
		return err
	}
	logger.Info("owner account seeded", zap.String("employee_id", emp.ID), zap.String("email", emp.Email))
	return nil
}
