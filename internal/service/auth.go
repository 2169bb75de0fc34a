package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/majidsaddiqye/reciperemix/internal/models"
	apperrors "github.com/majidsaddiqye/reciperemix/pkg/errors"
)

// tokenTTL matches the 7-day session lifetime carried by the cookie.
const tokenTTL = 7 * 24 * time.Hour

// TokenClaims is the identity extracted from a session token.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}

// AuthService implements registration, login and session tokens.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret}
}

// Register creates a user with a bcrypt-hashed password. Username and email
// are normalized to lower case; an existing username or email is rejected.
func (s *AuthService) Register(ctx context.Context, username, email, password string, dietaryPreferences []string) (*models.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, apperrors.Validation("username, email and password are required")
	}

	var existing models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&existing).Error
	if err == nil {
		return nil, apperrors.New(apperrors.CodeDuplicateUser, "user or email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	if dietaryPreferences == nil {
		dietaryPreferences = []string{}
	}
	user := models.User{
		Username:           username,
		Email:              email,
		PasswordHash:       string(hash),
		DietaryPreferences: dietaryPreferences,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// Login authenticates by email and password. An unknown email and a wrong
// password produce the same error so callers cannot enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.Validation("email and password are required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidCredentials, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.New(apperrors.CodeInvalidCredentials, "invalid email or password")
	}

	return &user, nil
}

// GenerateToken issues a signed session token for the user.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"exp":      time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken verifies a session token and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnauthorized, "invalid token", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, apperrors.Unauthorized("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, apperrors.Unauthorized("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid token claims")
	}

	username, _ := claims["username"].(string)
	return &TokenClaims{UserID: userID, Username: username}, nil
}

// GetUser loads a user by ID.
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateDietaryPreferences replaces the stored preference list wholesale.
func (s *AuthService) UpdateDietaryPreferences(ctx context.Context, userID uuid.UUID, prefs []string) (*models.User, error) {
	if prefs == nil {
		return nil, apperrors.Validation("dietary preferences must be an array")
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).
		Update("dietary_preferences", models.JSONBStringArray(prefs)).Error; err != nil {
		return nil, err
	}
	user.DietaryPreferences = prefs
	return user, nil
}
