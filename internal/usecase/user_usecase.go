package usecase

import (
	"context"
	"time"

	"lapakku/internal/domain/entity"
	"lapakku/internal/domain/repository"
	"lapakku/pkg/errors"
	"lapakku/pkg/logger"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	creator  AccountCreator
}

// AccountCreator provisions credentials with the identity provider.
type AccountCreator interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
}

func NewUserUseCase(userRepo repository.UserRepository, creator AccountCreator) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		creator:  creator,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Username string
}

func (uc *UserUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	if existing, err := uc.userRepo.GetByEmail(ctx, input.Email); err == nil && existing != nil {
		return nil, errors.Conflict("Email is already registered")
	}

	uid, err := uc.creator.CreateUser(ctx, input.Email, input.Password, input.Username)
	if err != nil {
		logger.Error("user: failed to provision account for %s: %v", input.Email, err)
		return nil, errors.Internal("Failed to create account", err)
	}

	user := &entity.User{
		ID:       uid,
		Email:    input.Email,
		Username: input.Username,
		Role:     entity.RoleCustomer,
		Status:   entity.StatusActive,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	Username  string
	Phone     string
	AvatarURL string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Username != "" {
		user.Username = input.Username
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}
	user.LastSeen = time.Now()

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (uc *UserUseCase) ListByRole(ctx context.Context, role string, limit, offset int) ([]*entity.User, int64, error) {
	return uc.userRepo.ListByRole(ctx, role, limit, offset)
}

// SetBlocked toggles the account state that admission checks at connect time.
func (uc *UserUseCase) SetBlocked(ctx context.Context, userID string, blocked bool) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if blocked {
		user.Status = entity.StatusBlocked
	} else {
		user.Status = entity.StatusActive
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
