package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/seiyar26/ppt-template-manager/internal/models"
)

const tokenLifetime = 7 * 24 * time.Hour

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Register creates a new account. Email matching is case-sensitive; only the
// bcrypt hash of the password is ever stored.
func (s *AuthService) Register(email, password, name string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, "", ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies the password, updates last_login and issues a fresh token.
// Tokens are independent: logging in again does not invalidate earlier ones.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.db.Model(&user).Update("last_login", now).Error; err != nil {
		return nil, "", fmt.Errorf("failed to update last login: %w", err)
	}

	token, err := s.issueToken(&user)
	if err != nil {
		return nil, "", err
	}

	return &user, token, nil
}

// Authenticate verifies a token's signature and expiry and loads its user.
// Any failure is a hard authentication error; there is no refresh mechanism.
func (s *AuthService) Authenticate(tokenString string) (*models.User, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", claims.Subject).Error; err != nil {
		return nil, ErrInvalidToken
	}

	return &user, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	claims := &tokenClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
