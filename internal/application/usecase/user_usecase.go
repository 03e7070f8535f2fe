package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Billing-api/internal/application/auth"
	"github.com/jhoicas/Billing-api/internal/application/dto"
	"github.com/jhoicas/Billing-api/internal/domain"
	domainbilling "github.com/jhoicas/Billing-api/internal/domain/billing"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
	"github.com/jhoicas/Billing-api/internal/domain/repository"
	"github.com/jhoicas/Billing-api/pkg/logger"
)

// PendingBillingAddress dirección provisional del cliente creado junto a un usuario del portal.
const PendingBillingAddress = "Pending"

// AccountTxRunner ejecuta fn dentro de una transacción con usuarios, clientes y secuencias.
type AccountTxRunner interface {
	RunAccounts(ctx context.Context, fn func(
		userRepo repository.UserRepository,
		clientRepo repository.ClientRepository,
		seqRepo repository.SequenceRepository,
	) error) error
}

// UserUseCase administración de usuarios (staff y portal de clientes).
type UserUseCase struct {
	txRunner  AccountTxRunner
	userRepo  repository.UserRepository
	roleRepo  repository.RoleRepository
	tokenRepo repository.PasswordResetTokenRepository
	notifier  auth.AccountNotifier
	log       *logger.Logger
	now       func() time.Time
}

// NewUserUseCase construye el caso de uso con sus puertos.
func NewUserUseCase(
	txRunner AccountTxRunner,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	tokenRepo repository.PasswordResetTokenRepository,
	notifier auth.AccountNotifier,
	log *logger.Logger,
) *UserUseCase {
	return &UserUseCase{
		txRunner:  txRunner,
		userRepo:  userRepo,
		roleRepo:  roleRepo,
		tokenRepo: tokenRepo,
		notifier:  notifier,
		log:       log.Named("users"),
		now:       time.Now,
	}
}

// List busca por nombre o email, filtra por estado y pagina.
func (uc *UserUseCase) List(ctx context.Context, q dto.UserListQuery) (*dto.UserListResponse, error) {
	q.DefaultPage()
	users, total, err := uc.userRepo.List(ctx, repository.UserFilter{
		Search: strings.TrimSpace(q.Search),
		Status: strings.ToUpper(strings.TrimSpace(q.Status)),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := &dto.UserListResponse{
		Items: make([]dto.UserResponse, 0, len(users)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	}
	for _, u := range users {
		out.Items = append(out.Items, *auth.ToUserResponse(u))
	}
	return out, nil
}

// GetByID obtiene un usuario por ID.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// Create da de alta un usuario. Sin contraseña se genera una aleatoria y se envía una invitación
// para fijarla. Con rol client se crea además el cliente vinculado en la misma transacción.
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := auth.NormalizeEmail(in.Email)
	if err := auth.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	status, err := userStatus(in.Status)
	if err != nil {
		return nil, err
	}
	role, err := uc.role(ctx, in.RoleID)
	if err != nil {
		return nil, err
	}

	invite := in.Password == ""
	password := in.Password
	if invite {
		password = uuid.New().String()
	} else if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	user := &entity.User{
		ID:               uuid.New().String(),
		Name:             strings.TrimSpace(in.Name),
		Email:            email,
		PasswordHash:     string(hash),
		RoleID:           role.ID,
		Status:           status,
		Phone:            strings.TrimSpace(in.Phone),
		PhoneCountryCode: strings.TrimSpace(in.PhoneCountryCode),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err = uc.txRunner.RunAccounts(ctx, func(userRepo repository.UserRepository, clientRepo repository.ClientRepository, seqRepo repository.SequenceRepository) error {
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
		if role.Code != entity.RoleClient {
			return nil
		}
		seq, err := seqRepo.Next(ctx, domainbilling.SequenceClient, now.Year())
		if err != nil {
			return err
		}
		userID := user.ID
		return clientRepo.Create(ctx, &entity.Client{
			ID:             uuid.New().String(),
			ClientCode:     domainbilling.ClientCode(now.Year(), seq),
			Name:           user.Name,
			Email:          user.Email,
			Phone:          user.Phone,
			BillingAddress: PendingBillingAddress,
			Currency:       entity.DefaultCurrency,
			Status:         entity.ClientStatusActive,
			UserID:         &userID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	})
	if err != nil {
		return nil, err
	}
	user.Role = role

	if invite {
		token, err := auth.CreateResetToken(ctx, uc.tokenRepo, user.Email, now, auth.InviteTokenTTL)
		if err != nil {
			uc.log.Error().Err(err).Str("user_id", user.ID).Msg("no se pudo crear el token de invitación")
		} else {
			uc.notifier.Invite(ctx, user.Email, user.Name, token, auth.InviteTokenTTL)
		}
	}
	uc.log.Info().Str("user_id", user.ID).Str("role", role.Code).Bool("invite", invite).Msg("usuario creado")
	return auth.ToUserResponse(user), nil
}

// Update edita datos, rol y estado. Password vacío conserva la actual.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	email := auth.NormalizeEmail(in.Email)
	if err := auth.ValidateName(in.Name); err != nil {
		return nil, err
	}
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	status, err := userStatus(in.Status)
	if err != nil {
		return nil, err
	}
	role, err := uc.role(ctx, in.RoleID)
	if err != nil {
		return nil, err
	}
	if in.Password != "" {
		if err := auth.ValidatePassword(in.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.Name = strings.TrimSpace(in.Name)
	user.Email = email
	user.RoleID = role.ID
	user.Status = status
	user.Phone = strings.TrimSpace(in.Phone)
	user.PhoneCountryCode = strings.TrimSpace(in.PhoneCountryCode)
	user.UpdatedAt = uc.now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	user.Role = role
	return auth.ToUserResponse(user), nil
}

// Delete borrado físico. Un usuario no puede eliminarse a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return fmt.Errorf("%w: no puede eliminar su propio usuario", domain.ErrConflict)
	}
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	return uc.userRepo.Delete(ctx, id)
}

func (uc *UserUseCase) get(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (uc *UserUseCase) role(ctx context.Context, id string) (*entity.Role, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: role_id inválido", domain.ErrInvalidInput)
	}
	role, err := uc.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, fmt.Errorf("%w: el rol no existe", domain.ErrInvalidInput)
	}
	return role, nil
}

func userStatus(s string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", entity.UserStatusActive:
		return entity.UserStatusActive, nil
	case entity.UserStatusInactive:
		return entity.UserStatusInactive, nil
	default:
		return "", fmt.Errorf("%w: estado de usuario inválido", domain.ErrInvalidInput)
	}
}
