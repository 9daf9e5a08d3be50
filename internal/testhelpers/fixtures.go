package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plateful/backend/internal/models"
)

// SetupSQLiteDB opens an in-memory database for fast unit tests that do not
// depend on Postgres behaviour.
func SetupSQLiteDB(t *testing.T) *gorm.DB {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.FoodEntry{},
		&models.CareGrant{},
	); err != nil {
		t.Fatalf("failed to migrate sqlite database: %v", err)
	}
	return db
}

// CreateTestUser inserts a confirmed user with the given email.
func CreateTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		ID:             uuid.New(),
		Name:           "Test User",
		Email:          email,
		PasswordHash:   string(hash),
		EmailConfirmed: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestEntry inserts a food entry owned by userID.
func CreateTestEntry(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *models.FoodEntry {
	entry := &models.FoodEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		MealDate:  time.Now(),
		MealType:  models.MealTypeOther,
		ImageData: TestImageData,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test entry: %v", err)
	}
	return entry
}

// TestImageData is a minimal valid meal photo payload.
const TestImageData = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="
