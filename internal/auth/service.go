package auth

import (
	"errors"
	"fmt"
	"time"

	"campus-ticketing/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

type UserDBLayer interface {
	CreateUser(user models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
}

type Service struct {
	DB       UserDBLayer
	Secret   string
	TokenTTL time.Duration
}

func NewService(db UserDBLayer, secret string, tokenTTL time.Duration) *Service {
	return &Service{DB: db, Secret: secret, TokenTTL: tokenTTL}
}

// Register creates an account with a bcrypt-hashed password and returns the
// user plus a signed session token.
func (s *Service) Register(name, email, password, role string) (*models.User, string, error) {
	if name == "" || email == "" {
		return nil, "", errors.New("name and email are required")
	}
	if len(password) < 8 {
		return nil, "", errors.New("password must be at least 8 characters")
	}
	if !models.ValidRole(role) {
		return nil, "", fmt.Errorf("unknown role %q", role)
	}

	if _, err := s.DB.GetUserByEmail(email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.DB.CreateUser(user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := IssueToken(user, s.Secret, s.TokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return &user, token, nil
}

// Login verifies the credentials and returns the user plus a session token.
func (s *Service) Login(email, password string) (*models.User, string, error) {
	user, err := s.DB.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := IssueToken(*user, s.Secret, s.TokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}
