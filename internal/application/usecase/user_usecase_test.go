package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/application/usecase"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/testutil"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

type fixture struct {
	uc       *usecase.UserUseCase
	repos    *testutil.Repos
	roles    map[string]*entity.Role
	accounts *testutil.Accounts
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	_, repos := testutil.NewRepos()
	roles := testutil.SeedRBAC(context.Background(), repos)
	accounts := &testutil.Accounts{}
	uc := usecase.NewUserUseCase(repos.Tx, repos.Users, repos.Roles, repos.Tokens, accounts, logger.Nop())
	return fixture{uc: uc, repos: repos, roles: roles, accounts: accounts}
}

func TestCreate_ConPasswordNoInvita(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.Create(ctx, dto.CreateUserRequest{
		Name: "Admin", Email: "Admin@Example.com", Password: "secreta123", RoleID: f.roles[entity.RoleAdmin].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", out.Email)
	assert.Equal(t, entity.RoleAdmin, out.Role.Code)
	assert.Equal(t, entity.UserStatusActive, out.Status)
	assert.Empty(t, f.accounts.Sent)
}

func TestCreate_SinPasswordEnviaInvitacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.Create(ctx, dto.CreateUserRequest{Name: "Staff", Email: "staff@example.com", RoleID: f.roles[entity.RoleUser].ID})
	require.NoError(t, err)

	mail := f.accounts.Last()
	assert.Equal(t, "invite", mail.Kind)
	assert.Equal(t, out.Email, mail.To)
	assert.Len(t, mail.Token, 64)
	assert.Equal(t, 1, f.repos.Tokens.Count())

	client, err := f.repos.Clients.GetByUserID(ctx, out.ID)
	require.NoError(t, err)
	assert.Nil(t, client, "solo el rol client crea cliente vinculado")
}

func TestCreate_RolClienteCreaClienteVinculado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.Create(ctx, dto.CreateUserRequest{Name: "Portal", Email: "portal@example.com", RoleID: f.roles[entity.RoleClient].ID})
	require.NoError(t, err)

	client, err := f.repos.Clients.GetByUserID(ctx, out.ID)
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, usecase.PendingBillingAddress, client.BillingAddress)
	assert.Equal(t, "portal@example.com", client.Email)
	assert.Regexp(t, `^CL-\d{4}-001$`, client.ClientCode)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	roleID := f.roles[entity.RoleUser].ID

	for name, req := range map[string]dto.CreateUserRequest{
		"rol inexistente":  {Name: "Ana", Email: "ana@example.com", RoleID: "0b7f8c1e-0000-4000-8000-000000000000"},
		"rol inválido":     {Name: "Ana", Email: "ana@example.com", RoleID: "admin"},
		"email inválido":   {Name: "Ana", Email: "ana", RoleID: roleID},
		"contraseña corta": {Name: "Ana", Email: "ana@example.com", Password: "123", RoleID: roleID},
		"estado inválido":  {Name: "Ana", Email: "ana@example.com", RoleID: roleID, Status: "BLOQUEADO"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.Create(ctx, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	_, err := f.uc.Create(ctx, dto.CreateUserRequest{Name: "Ana", Email: "ana@example.com", Password: "secreta123", RoleID: roleID})
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, dto.CreateUserRequest{Name: "Ana", Email: "ANA@example.com", Password: "secreta123", RoleID: roleID})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestUpdate_PasswordOpcional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.NewUser(ctx, f.repos, f.roles[entity.RoleUser], "ana@example.com", "secreta123")
	before, err := f.repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)

	out, err := f.uc.Update(ctx, u.ID, dto.UpdateUserRequest{
		Name: "Ana B", Email: "ana@example.com", RoleID: f.roles[entity.RoleAdmin].ID, Status: "inactive",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.Role.Code)
	assert.Equal(t, entity.UserStatusInactive, out.Status)

	after, err := f.repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)

	_, err = f.uc.Update(ctx, u.ID, dto.UpdateUserRequest{
		Name: "Ana B", Email: "ana@example.com", Password: "nueva-clave", RoleID: f.roles[entity.RoleAdmin].ID,
	})
	require.NoError(t, err)
	after, err = f.repos.Users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
}

func TestListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := testutil.NewUser(ctx, f.repos, f.roles[entity.RoleUser], "ana@example.com", "secreta123")
	testutil.NewUser(ctx, f.repos, f.roles[entity.RoleUser], "beto@example.com", "secreta123")

	list, err := f.uc.List(ctx, dto.UserListQuery{Search: "ana"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Total)
	assert.Equal(t, 20, list.Page.Limit)

	assert.ErrorIs(t, f.uc.Delete(ctx, a.ID, a.ID), domain.ErrConflict)
	require.NoError(t, f.uc.Delete(ctx, "otro", a.ID))
	_, err = f.uc.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.ErrorIs(t, f.uc.Delete(ctx, "otro", a.ID), domain.ErrUserNotFound)
}
