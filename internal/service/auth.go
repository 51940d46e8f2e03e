package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/opsboard/backend/internal/model"
	"github.com/opsboard/backend/internal/types"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService handles registration, login and token issuance.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	logger    *zap.Logger
}

func NewAuthService(db *gorm.DB, jwtSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Register creates a user with a bcrypt-hashed password plus a profile, and
// returns a signed token.
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*model.User, string, error) {
	var existing model.User
	if err := s.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, "", ErrUserExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := model.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashed),
		Role:         "staff",
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		profile := model.UserProfile{
			ID:       uuid.New(),
			UserID:   user.ID,
			Username: req.Username,
			JobTitle: req.JobTitle,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(&types.TokenClaims{
		UserID:   user.ID,
		Username: req.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return &user, token, nil
}

// Login verifies credentials and returns the user, profile and a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	var profile model.UserProfile
	username := user.Name
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; err == nil {
		username = profile.Username
	}

	token, err := s.GenerateToken(&types.TokenClaims{
		UserID:   user.ID,
		Username: username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// GenerateToken signs a JWT for the given claims with a 24h expiry.
func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a JWT, implementing middleware.TokenValidator.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*types.TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetProfile returns the profile for a user.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile applies non-empty fields from the request to the profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *types.UpdateProfileRequest) (*model.UserProfile, error) {
	var profile model.UserProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}

	if req.Username != "" {
		profile.Username = req.Username
	}
	if req.JobTitle != "" {
		profile.JobTitle = req.JobTitle
	}
	if req.PhotoURL != "" {
		profile.PhotoURL = req.PhotoURL
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
