package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/application/rbac"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	domainrbac "github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/testutil"
)

func boolPtr(b bool) *bool { return &b }

func TestPermissionList_InactivosSoloConPermissionView(t *testing.T) {
	_, repos := testutil.NewRepos()
	ctx := context.Background()
	testutil.SeedRBAC(ctx, repos)
	uc := rbac.NewPermissionUseCase(repos.Permissions)

	_, err := uc.Create(ctx, dto.PermissionRequest{Module: "report", Code: "report.export", Name: "Exportar", IsActive: boolPtr(false)})
	require.NoError(t, err)

	viewer := domainrbac.Actor{UserID: "u1", Role: "admin", Permissions: []string{"permission.view"}}
	all, err := uc.List(ctx, viewer)
	require.NoError(t, err)
	active, err := uc.List(ctx, domainrbac.Actor{UserID: "u2", Role: "user"})
	require.NoError(t, err)

	assert.Len(t, all, len(domainrbac.Catalog)+1)
	assert.Len(t, active, len(domainrbac.Catalog))
	assert.Equal(t, "client", all[0].Module, "ordenados por módulo")
}

func TestPermissionCreate_Validaciones(t *testing.T) {
	_, repos := testutil.NewRepos()
	ctx := context.Background()
	testutil.SeedRBAC(ctx, repos)
	uc := rbac.NewPermissionUseCase(repos.Permissions)

	_, err := uc.Create(ctx, dto.PermissionRequest{Module: "client", Code: "client.view", Name: "Ver"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.PermissionRequest{Module: "client", Code: "invoice.export", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.PermissionRequest{Module: "client", Code: "client.export"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPermissionDelete_EnUso(t *testing.T) {
	_, repos := testutil.NewRepos()
	ctx := context.Background()
	testutil.SeedRBAC(ctx, repos)
	uc := rbac.NewPermissionUseCase(repos.Permissions)

	used, err := repos.Permissions.GetByCode(ctx, "invoice.view")
	require.NoError(t, err)
	assert.ErrorIs(t, uc.Delete(ctx, used.ID), domain.ErrPermissionInUse)

	free, err := uc.Create(ctx, dto.PermissionRequest{Module: "report", Code: "report.view", Name: "Ver reportes"})
	require.NoError(t, err)
	require.NoError(t, uc.Delete(ctx, free.ID))
	_, err = uc.GetByID(ctx, free.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPermissionUpdate_Desactivar(t *testing.T) {
	_, repos := testutil.NewRepos()
	ctx := context.Background()
	uc := rbac.NewPermissionUseCase(repos.Permissions)

	p, err := uc.Create(ctx, dto.PermissionRequest{Module: "report", Code: "report.view", Name: "Ver"})
	require.NoError(t, err)
	assert.True(t, p.IsActive)

	out, err := uc.Update(ctx, p.ID, dto.PermissionRequest{Module: "report", Code: "report.view", Name: "Ver reportes", IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, out.IsActive)
	assert.Equal(t, "Ver reportes", out.Name)
}

func newRoleUseCase(t *testing.T) (*rbac.RoleUseCase, *testutil.Repos, map[string]*entity.Role) {
	t.Helper()
	_, repos := testutil.NewRepos()
	roles := testutil.SeedRBAC(context.Background(), repos)
	return rbac.NewRoleUseCase(repos.Roles, repos.Permissions, repos.Users), repos, roles
}

func permissionIDs(t *testing.T, repos *testutil.Repos, codes ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(codes))
	for _, c := range codes {
		p, err := repos.Permissions.GetByCode(context.Background(), c)
		require.NoError(t, err)
		require.NotNil(t, p, c)
		ids = append(ids, p.ID)
	}
	return ids
}

func TestRoleCreateAndUpdate(t *testing.T) {
	uc, repos, _ := newRoleUseCase(t)
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.RoleRequest{
		Code: "Contador", Name: "Contador",
		PermissionIDs: permissionIDs(t, repos, "invoice.view", "client.view"),
	})
	require.NoError(t, err)
	assert.Equal(t, "contador", created.Code)
	assert.False(t, created.IsSystemRole)
	assert.ElementsMatch(t, []string{"invoice", "client"}, domainrbac.Modules(created.PermissionGroups))

	updated, err := uc.Update(ctx, created.ID, dto.RoleRequest{
		Code: "otro", Name: "Contador senior",
		PermissionIDs: permissionIDs(t, repos, "invoice.view"),
	})
	require.NoError(t, err)
	assert.Equal(t, "contador", updated.Code, "el código es inmutable")

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Permissions, 1)
	assert.Equal(t, "invoice.view", got.Permissions[0].Code)

	_, err = uc.Create(ctx, dto.RoleRequest{Code: "contador", Name: "Duplicado"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRoleCreate_PermisosInexistentes(t *testing.T) {
	uc, _, _ := newRoleUseCase(t)
	_, err := uc.Create(context.Background(), dto.RoleRequest{Code: "x", Name: "X", PermissionIDs: []string{"no-uuid"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRoleDelete(t *testing.T) {
	uc, repos, roles := newRoleUseCase(t)
	ctx := context.Background()

	assert.ErrorIs(t, uc.Delete(ctx, roles[entity.RoleAdmin].ID), domain.ErrSystemRole)
	assert.ErrorIs(t, uc.Delete(ctx, "no-existe"), domain.ErrNotFound)

	custom, err := uc.Create(ctx, dto.RoleRequest{Code: "soporte", Name: "Soporte"})
	require.NoError(t, err)
	role, err := repos.Roles.GetByID(ctx, custom.ID)
	require.NoError(t, err)
	u := testutil.NewUser(ctx, repos, role, "soporte@example.com", "secreta123")
	assert.ErrorIs(t, uc.Delete(ctx, custom.ID), domain.ErrRoleInUse)

	require.NoError(t, repos.Users.Delete(ctx, u.ID))
	require.NoError(t, uc.Delete(ctx, custom.ID))
}

func TestRoleList_CuentaUsuarios(t *testing.T) {
	uc, repos, roles := newRoleUseCase(t)
	ctx := context.Background()
	testutil.NewUser(ctx, repos, roles[entity.RoleAdmin], "a@example.com", "secreta123")

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for _, r := range list {
		if r.Code == entity.RoleAdmin {
			assert.Equal(t, 1, r.UserCount)
		}
	}
}
