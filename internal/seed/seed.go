// Package seed creates the default privileges, roles and the first
// administrator. Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
)

const (
	AdminEmail = "admin@example.com"
	AdminName  = "Master Administrator"
)

func Run(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRepo := repository.NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := roleRepo.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	all, err := privilegeRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("load privileges: %w", err)
	}

	// Roles that already carry privileges were customised; leave them alone.
	for _, code := range []string{model.RoleMasterAdmin, model.RoleAdmin, model.RoleCashier} {
		role, err := roleRepo.FindByCode(ctx, code)
		if err != nil {
			return fmt.Errorf("load role %s: %w", code, err)
		}
		if len(role.Privileges) > 0 {
			continue
		}
		if err := roleRepo.ReplacePrivileges(ctx, role, model.PrivilegesForRole(code, all)); err != nil {
			return fmt.Errorf("assign privileges to %s: %w", code, err)
		}
		log.Info().Str("role", code).Msg("role privileges assigned")
	}

	_, err = userRepo.FindByEmail(ctx, AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin: %w", err)
	}

	master, err := roleRepo.FindByCode(ctx, model.RoleMasterAdmin)
	if err != nil {
		return fmt.Errorf("load role %s: %w", model.RoleMasterAdmin, err)
	}
	admin := &model.User{
		Email:      AdminEmail,
		FullName:   AdminName,
		RoleID:     &master.ID,
		IsActive:   true,
		Privileges: master.Privileges,
	}
	admin.CreatedBy = model.SystemActor.ID
	admin.UpdatedBy = model.SystemActor.ID
	if err := userRepo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info().Str("email", AdminEmail).Msg("admin user created (MASTER_ADMIN)")
	return nil
}
