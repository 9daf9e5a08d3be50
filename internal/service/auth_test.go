package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/plateful/backend/internal/models"
	"github.com/plateful/backend/internal/service"
	"github.com/plateful/backend/internal/testhelpers"
)

// stubEmailService records outbound mail instead of sending it.
type stubEmailService struct {
	confirmations []string
	resets        []string
}

func (s *stubEmailService) SendConfirmationEmail(user *models.User, token string) error {
	s.confirmations = append(s.confirmations, token)
	return nil
}

func (s *stubEmailService) SendPasswordResetEmail(user *models.User, token string) error {
	s.resets = append(s.resets, token)
	return nil
}

func (s *stubEmailService) SendEmail(to, subject, body string) error { return nil }

func newAuthService(t *testing.T) (*service.AuthService, *gorm.DB, *stubEmailService) {
	db := testhelpers.SetupSQLiteDB(t)
	email := &stubEmailService{}
	return service.NewAuthService(db, "test-jwt-secret", email), db, email
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, email := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Test User", "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.False(t, user.EmailConfirmed)
	assert.Len(t, email.confirmations, 1)

	_, err = svc.Register(ctx, "Imposter", "new@example.com", "other")
	assert.ErrorIs(t, err, service.ErrUserExists)

	logged, err := svc.Login(ctx, "new@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, err = svc.Login(ctx, "new@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, db, _ := newAuthService(t)
	user := testhelpers.CreateTestUser(t, db, "token@example.com")

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.True(t, claims.IsEmailVerified)

	_, err = svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	other := service.NewAuthService(db, "different-secret", &stubEmailService{})
	_, err = other.ValidateToken(token)
	assert.Error(t, err, "token signed with another secret must be rejected")
}

func TestConfirmEmail(t *testing.T) {
	svc, db, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Confirm Me", "confirm@example.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, user.ConfirmToken)

	confirmed, err := svc.ConfirmEmail(ctx, user.ConfirmToken)
	require.NoError(t, err)
	assert.True(t, confirmed.EmailConfirmed)
	assert.Empty(t, confirmed.ConfirmToken)

	// The token is single-use.
	_, err = svc.ConfirmEmail(ctx, user.ConfirmToken)
	assert.Error(t, err)
	_, err = svc.ConfirmEmail(ctx, "")
	assert.Error(t, err)

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	assert.True(t, stored.EmailConfirmed)
}

func TestResendConfirmation(t *testing.T) {
	svc, _, email := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Resend", "resend@example.com", "password123")
	require.NoError(t, err)
	require.NoError(t, svc.ResendConfirmation(ctx, "resend@example.com"))
	assert.Len(t, email.confirmations, 2)

	// Unknown address reports success without sending anything.
	require.NoError(t, svc.ResendConfirmation(ctx, "ghost@example.com"))
	assert.Len(t, email.confirmations, 2)

	// Already-confirmed accounts are left alone.
	_, err = svc.ConfirmEmail(ctx, user.ConfirmToken)
	require.NoError(t, err)
	require.NoError(t, svc.ResendConfirmation(ctx, "resend@example.com"))
	assert.Len(t, email.confirmations, 2)
}

func TestPasswordReset(t *testing.T) {
	svc, _, email := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Reset Me", "reset@example.com", "oldpassword")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "reset@example.com"))
	require.Len(t, email.resets, 1)
	token := email.resets[0]

	// Unknown address reports success, same anti-probing posture as login.
	require.NoError(t, svc.RequestPasswordReset(ctx, "ghost@example.com"))
	assert.Len(t, email.resets, 1)

	require.NoError(t, svc.ResetPassword(ctx, token, "newpassword"))

	_, err = svc.Login(ctx, "reset@example.com", "oldpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "reset@example.com", "newpassword")
	assert.NoError(t, err)

	// Tokens are single-use.
	err = svc.ResetPassword(ctx, token, "thirdpassword")
	assert.ErrorIs(t, err, service.ErrInvalidResetToken)
	err = svc.ResetPassword(ctx, "bogus-token", "whatever")
	assert.ErrorIs(t, err, service.ErrInvalidResetToken)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, db, email := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Late", "late@example.com", "oldpassword")
	require.NoError(t, err)
	require.NoError(t, svc.RequestPasswordReset(ctx, "late@example.com"))
	require.Len(t, email.resets, 1)

	// Age the token past its hour of validity.
	require.NoError(t, db.Model(&models.PasswordReset{}).
		Where("token = ?", email.resets[0]).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err = svc.ResetPassword(ctx, email.resets[0], "newpassword")
	assert.ErrorIs(t, err, service.ErrInvalidResetToken)

	var stored models.User
	require.NoError(t, db.First(&stored, "email = ?", "late@example.com").Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("oldpassword")))
}
