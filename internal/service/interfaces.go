package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	ValidateToken(token string) (*types.TokenClaims, error)
	GenerateToken(user *models.User) (string, error)
	ConfirmEmail(ctx context.Context, token string) (*models.User, error)
	ResendConfirmation(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// IFoodEntryService defines the interface for food entry operations
type IFoodEntryService interface {
	Create(ctx context.Context, userID uuid.UUID, input types.EntryInput) (*models.FoodEntry, error)
	GetHistoryByUserID(ctx context.Context, userID uuid.UUID, filter types.HistoryFilter, page, limit int) (*types.HistoryPage, error)
	GetByID(ctx context.Context, id uuid.UUID, includeImage bool) (*models.FoodEntry, error)
	Update(ctx context.Context, id, userID uuid.UUID, updates types.EntryUpdate) (*models.FoodEntry, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	GetStats(ctx context.Context, userID uuid.UUID) (*types.EntryStats, error)
	HasCareGrant(ctx context.Context, viewerID, ownerID uuid.UUID) (bool, error)
}

// IEmailService defines the interface for outbound mail
type IEmailService interface {
	SendConfirmationEmail(user *models.User, token string) error
	SendPasswordResetEmail(user *models.User, token string) error
	SendEmail(to, subject, body string) error
}

var _ IFoodEntryService = (*FoodEntryService)(nil)
