package seed_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-pos/internal/model"
	"go-inventory-pos/internal/repository"
	"go-inventory-pos/internal/seed"
	"go-inventory-pos/internal/testutil"
)

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	require.NoError(t, seed.Run(ctx, db, zerolog.Nop()))
	require.NoError(t, seed.Run(ctx, db, zerolog.Nop()))

	var privileges, roles, users int64
	require.NoError(t, db.Model(&model.Privilege{}).Count(&privileges).Error)
	require.NoError(t, db.Model(&model.Role{}).Count(&roles).Error)
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	assert.Equal(t, int64(len(model.DefaultPrivileges)), privileges)
	assert.Equal(t, int64(len(model.DefaultRoles)), roles)
	assert.Equal(t, int64(1), users)

	admin, err := repository.NewUserRepo(db).FindByEmail(ctx, seed.AdminEmail)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMasterAdmin, admin.RoleCode())
	assert.Len(t, admin.Privileges, len(model.DefaultPrivileges))

	cashier, err := repository.NewRoleRepo(db).FindByCode(ctx, model.RoleCashier)
	require.NoError(t, err)
	assert.Len(t, cashier.Privileges, len(model.CashierPrivileges))
}
