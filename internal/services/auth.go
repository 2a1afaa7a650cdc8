package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vibelink/vibelink/internal/models"
	"github.com/vibelink/vibelink/internal/repository"
	"github.com/vibelink/vibelink/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthService stands in for the hosted platform's auth: it keeps
// credentials in auth_users and creates the public profile row with the
// same id at registration.
type AuthService struct {
	db       *gorm.DB
	profiles *repository.ProfileRepository
	logger   *logger.Logger
}

func NewAuthService(db *gorm.DB, profiles *repository.ProfileRepository, logger *logger.Logger) *AuthService {
	return &AuthService{db: db, profiles: profiles, logger: logger}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=30"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
	DisplayName string `json:"display_name" binding:"max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.Profile, error) {
	existing, err := s.profiles.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.AuthUser{}).
		Where("email = ?", req.Email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := uuid.New()
	user := &models.AuthUser{
		ID:       id,
		Email:    req.Email,
		Password: string(hashed),
	}
	profile := &models.Profile{
		ID:          id,
		Username:    req.Username,
		DisplayName: req.DisplayName,
	}

	// The auth row and the profile share an id and are created together.
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(profile).Error
	}); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.logger.WithField("user_id", id).Info("User registered")
	return profile, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*models.Profile, error) {
	var user models.AuthUser
	if err := s.db.WithContext(ctx).First(&user, "email = ?", req.Email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	profile, err := s.profiles.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if profile == nil {
		return nil, ErrInvalidCredentials
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return profile, nil
}
