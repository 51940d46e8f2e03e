package testhelpers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/types"
)

// StubTokenValidator accepts any token and answers with fixed claims. Handler
// tests use it in place of the auth service.
type StubTokenValidator struct {
	UserID   uuid.UUID
	Username string
	Role     string
	Err      error
}

func (v *StubTokenValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	return &types.TokenClaims{
		UserID:   v.UserID,
		Username: v.Username,
		Role:     v.Role,
	}, nil
}

// CreateTestUser inserts a user with a fixed password hash.
func CreateTestUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "not-a-real-hash",
		Role:         "staff",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestSupply inserts a food supply with the given stock level.
func CreateTestSupply(t *testing.T, db *gorm.DB, name string, quantity, price float64) *model.FoodSupply {
	t.Helper()
	supply := &model.FoodSupply{
		ID:           uuid.New(),
		Name:         name,
		Category:     "test",
		Quantity:     quantity,
		Unit:         "kg",
		PricePerUnit: price,
	}
	if err := db.Create(supply).Error; err != nil {
		t.Fatalf("failed to create test supply: %v", err)
	}
	return supply
}

// CreateExpiredSupply inserts a supply whose expiration date is in the past.
func CreateExpiredSupply(t *testing.T, db *gorm.DB, name string, quantity, price float64) *model.FoodSupply {
	t.Helper()
	yesterday := time.Now().Add(-24 * time.Hour)
	supply := &model.FoodSupply{
		ID:             uuid.New(),
		Name:           name,
		Category:       "test",
		Quantity:       quantity,
		Unit:           "kg",
		PricePerUnit:   price,
		ExpirationDate: &yesterday,
	}
	if err := db.Create(supply).Error; err != nil {
		t.Fatalf("failed to create test supply: %v", err)
	}
	return supply
}
