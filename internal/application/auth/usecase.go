package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/jhoicas/Billing-api/pkg/jwt"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// AuthUseCase casos de uso de identidad: registro, login, sesión y contraseñas.
type AuthUseCase struct {
	userRepo  repository.UserRepository
	roleRepo  repository.RoleRepository
	tokenRepo repository.PasswordResetTokenRepository
	notifier  AccountNotifier
	jwtCfg    JWTConfig
	log       *logger.Logger
	now       func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	notifier AccountNotifier,
	jwtCfg JWTConfig,
	log *logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		tokenRepo: tokenRepo,
		notifier:  notifier,
		jwtCfg:    jwtCfg,
		log:       log.Named("auth"),
		now:       time.Now,
	}
}

// RegisterUser auto-registro con rol "user". Devuelve ErrEmailAlreadyExists si el email ya existe.
func (uc *AuthUseCase) RegisterUser(ctx context.Context, in dto.RegisterRequest) (*dto.UserResponse, error) {
	email := NormalizeEmail(in.Email)
	if err := ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}
	role, err := uc.roleRepo.GetByCode(ctx, entity.RoleUser)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("rol %q no configurado: %w", entity.RoleUser, domain.ErrNotFound)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       role.ID,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
		Role:         role,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

// Login verifica email/password, genera JWT con rol y permisos y retorna token + sesión.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	now := uc.now()
	if err := uc.userRepo.TouchLastLogin(ctx, user.ID, now); err != nil {
		uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("no se pudo registrar el último acceso")
	} else {
		user.LastLoginAt = &now
	}
	return uc.issue(ctx, user)
}

// Refresh vuelve a leer usuario, rol y permisos y emite un token nuevo.
func (uc *AuthUseCase) Refresh(ctx context.Context, userID string) (*dto.LoginResponse, error) {
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.issue(ctx, user)
}

// Me devuelve la sesión actual leída del almacén (no del token).
func (uc *AuthUseCase) Me(ctx context.Context, userID string) (*dto.SessionResponse, error) {
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := uc.roleRepo.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	if role != nil {
		user.Role = role
	}
	out := sessionResponse(user, SessionPermissions(role))
	return &out, nil
}

// ForgotPassword nunca revela si el email existe. Si existe, reemplaza tokens previos y envía el enlace.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, in dto.ForgotPasswordRequest) error {
	email := NormalizeEmail(in.Email)
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		uc.log.Error().Err(err).Msg("forgot-password: buscar usuario")
		return nil
	}
	if user == nil {
		return nil
	}
	token, err := uc.createToken(ctx, user.Email, ResetTokenTTL)
	if err != nil {
		uc.log.Error().Err(err).Str("user_id", user.ID).Msg("forgot-password: crear token")
		return nil
	}
	uc.notifier.PasswordReset(ctx, user.Email, user.Name, token, ResetTokenTTL)
	return nil
}

// ResetPassword consume un token de un solo uso y fija la nueva contraseña.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) error {
	if strings.TrimSpace(in.Token) == "" {
		return domain.ErrInvalidToken
	}
	t, err := uc.tokenRepo.GetByToken(ctx, in.Token)
	if err != nil {
		return err
	}
	if t == nil {
		return domain.ErrInvalidToken
	}
	if t.Expired(uc.now()) {
		if err := uc.tokenRepo.Delete(ctx, t.ID); err != nil {
			uc.log.Warn().Err(err).Msg("reset-password: borrar token expirado")
		}
		return domain.ErrTokenExpired
	}
	if err := ValidatePassword(in.Password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := uc.userRepo.UpdatePasswordByEmail(ctx, t.Email, string(hash)); err != nil {
		return err
	}
	return uc.tokenRepo.Delete(ctx, t.ID)
}

// ChangePassword cambio autenticado: la actual debe coincidir y la nueva ser distinta.
func (uc *AuthUseCase) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error {
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: la contraseña actual no es correcta", domain.ErrInvalidInput)
	}
	if in.NewPassword == in.CurrentPassword {
		return fmt.Errorf("%w: la nueva contraseña debe ser distinta de la actual", domain.ErrInvalidInput)
	}
	if err := ValidatePassword(in.NewPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return uc.userRepo.UpdatePasswordByEmail(ctx, user.Email, string(hash))
}

// UpdateProfile actualiza nombre, teléfono e imagen del propio usuario.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := ValidateName(in.Name); err != nil {
		return nil, err
	}
	user, err := uc.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(in.Name)
	user.Phone = in.Phone
	user.PhoneCountryCode = in.PhoneCountryCode
	user.ImageURL = in.ImageURL
	user.UpdatedAt = uc.now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return ToUserResponse(user), nil
}

func (uc *AuthUseCase) activeUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if !user.IsActive() {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func (uc *AuthUseCase) issue(ctx context.Context, user *entity.User) (*dto.LoginResponse, error) {
	role, err := uc.roleRepo.GetByID(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: el usuario no tiene rol", domain.ErrForbidden)
	}
	user.Role = role
	perms := SessionPermissions(role)
	token, err := jwt.Generate(uc.jwtCfg.Secret, jwt.Session{
		UserID:      user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        role.Code,
		Permissions: perms,
	}, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, Session: sessionResponse(user, perms)}, nil
}

// createToken reemplaza los tokens previos del email por uno nuevo con la vigencia indicada.
func (uc *AuthUseCase) createToken(ctx context.Context, email string, ttl time.Duration) (string, error) {
	return CreateResetToken(ctx, uc.tokenRepo, email, uc.now(), ttl)
}

// CreateResetToken borra los tokens previos del email y guarda uno nuevo.
func CreateResetToken(ctx context.Context, repo repository.PasswordResetTokenRepository, email string, now time.Time, ttl time.Duration) (string, error) {
	if err := repo.DeleteByEmail(ctx, email); err != nil {
		return "", err
	}
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	err = repo.Create(ctx, &entity.PasswordResetToken{
		ID:        uuid.New().String(),
		Email:     email,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}
