package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Billing-api/internal/application/auth"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/rbac"
	"github.com/jhoicas/Billing-api/internal/testutil"
	"github.com/jhoicas/Billing-api/pkg/jwt"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

const secret = "test-secret"

type fixture struct {
	uc       *auth.AuthUseCase
	repos    *testutil.Repos
	roles    map[string]*entity.Role
	accounts *testutil.Accounts
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	_, repos := testutil.NewRepos()
	roles := testutil.SeedRBAC(context.Background(), repos)
	accounts := &testutil.Accounts{}
	uc := auth.NewAuthUseCase(repos.Users, repos.Roles, repos.Tokens, accounts,
		auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "billing-api"}, logger.Nop())
	return fixture{uc: uc, repos: repos, roles: roles, accounts: accounts}
}

func TestRegister_AsignaRolUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.uc.RegisterUser(ctx, dto.RegisterRequest{Name: "Ana", Email: " Ana@Example.com ", Password: "secreta123"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", out.Email)
	assert.Equal(t, entity.RoleUser, out.Role.Code)

	_, err = f.uc.RegisterUser(ctx, dto.RegisterRequest{Name: "Ana", Email: "ANA@example.com", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_Validaciones(t *testing.T) {
	f := newFixture(t)
	for name, req := range map[string]dto.RegisterRequest{
		"nombre corto":     {Name: "A", Email: "a@example.com", Password: "secreta123"},
		"email inválido":   {Name: "Ana", Email: "ana", Password: "secreta123"},
		"contraseña corta": {Name: "Ana", Email: "a@example.com", Password: "123"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.RegisterUser(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLogin_TokenConRolYPermisos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.NewUser(ctx, f.repos, f.roles[entity.RoleSuperAdmin], "root@example.com", "secreta123")

	out, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ROOT@example.com", Password: "secreta123"})
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSuperAdmin, claims.Role)
	assert.Contains(t, claims.Permissions, rbac.SuperAdmin)
	assert.Contains(t, claims.Permissions, "invoice.create")
	assert.Equal(t, out.Session.Permissions, claims.Permissions)
	assert.Contains(t, out.Session.PermissionGroups, "invoice")
	assert.NotNil(t, out.Session.User.LastLoginAt)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.NewUser(ctx, f.repos, f.roles[entity.RoleUser], "ana@example.com", "secreta123")

	_, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "nadie@example.com", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.NewUser(ctx, f.repos, f.roles[entity.RoleUser], "ana@example.com", "secreta123")
	u.Status = entity.UserStatusInactive
	require.NoError(t, f.repos.Users.Update(ctx, u))

	_, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMe_LeePermisosActuales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.NewUser(ctx, f.repos, f.roles[entity.RoleClient], "cliente@example.com", "secreta123")

	me, err := f.uc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"invoice.view", "invoice.pay"}, me.Permissions)
	assert.Equal(t, entity.RoleClient, me.User.Role.Code)

	_, err = f.uc.Me(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRefresh_EmiteTokenNuevo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.NewUser(ctx, f.repos, f.roles[entity.RoleAdmin], "admin@example.com", "secreta123")

	out, err := f.uc.Refresh(ctx, u.ID)
	require.NoError(t, err)
	claims, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
}

func TestForgotAndResetPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.NewUser(ctx, f.repos, f.roles[entity.RoleUser], "ana@example.com", "secreta123")

	require.NoError(t, f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@example.com"}))
	require.NoError(t, f.uc.ForgotPassword(ctx, dto.ForgotPasswordRequest{Email: "ana@example.com"}))
	assert.Equal(t, 1, f.repos.Tokens.Count(), "un nuevo token reemplaza al anterior")

	mail := f.accounts.Last()
	assert.Equal(t, "password_reset", mail.Kind)
	require.Len(t, mail.Token, 64)

	require.NoError(t, f.uc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: mail.Token, Password: "nueva-clave"}))
	assert.Equal(t, 0, f.repos.Tokens.Count())

	_, err := f.uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "nueva-clave"})
	require.NoError(t, err)

	err = f.uc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: mail.Token, Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestForgotPassword_EmailDesconocidoNoRevela(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.uc.ForgotPassword(context.Background(), dto.ForgotPasswordRequest{Email: "nadie@example.com"}))
	assert.Empty(t, f.accounts.Sent)
	assert.Equal(t, 0, f.repos.Tokens.Count())
}

func TestResetPassword_TokenExpirado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repos.Tokens.Create(ctx, &entity.PasswordResetToken{
		ID: "t1", Email: "ana@example.com", Token: "abc",
		ExpiresAt: time.Now().Add(-time.Minute), CreatedAt: time.Now().Add(-16 * time.Minute),
	}))

	err := f.uc.ResetPassword(ctx, dto.ResetPasswordRequest{Token: "abc", Password: "nueva-clave"})
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.Equal(t, 0, f.repos.Tokens.Count())
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.NewUser(ctx, f.repos, f.roles[entity.RoleUser], "ana@example.com", "secreta123")

	err := f.uc.ChangePassword(ctx, u.ID, dto.ChangePasswordRequest{CurrentPassword: "mala", NewPassword: "nueva-clave"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = f.uc.ChangePassword(ctx, u.ID, dto.ChangePasswordRequest{CurrentPassword: "secreta123", NewPassword: "secreta123"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.NoError(t, f.uc.ChangePassword(ctx, u.ID, dto.ChangePasswordRequest{CurrentPassword: "secreta123", NewPassword: "nueva-clave"}))
	_, err = f.uc.Login(ctx, dto.LoginRequest{Email: "ana@example.com", Password: "nueva-clave"})
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := testutil.NewUser(ctx, f.repos, f.roles[entity.RoleUser], "ana@example.com", "secreta123")

	out, err := f.uc.UpdateProfile(ctx, u.ID, dto.UpdateProfileRequest{Name: "Ana María", Phone: "3001234567", PhoneCountryCode: "+57"})
	require.NoError(t, err)
	assert.Equal(t, "Ana María", out.Name)
	assert.Equal(t, "+57", out.PhoneCountryCode)
	assert.Equal(t, "ana@example.com", out.Email)
}
