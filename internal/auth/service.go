package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// Error carries a message that can be shown to the user as is.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrEmailInUse     = &Error{Message: "Email is already in use.", Err: common.ErrConflict}
	ErrWeakPassword   = &Error{Message: "Password must be at least 6 characters.", Err: common.ErrInvalidInput}
	ErrInvalidEmail   = &Error{Message: "Please enter a valid email address.", Err: common.ErrInvalidInput}
	ErrUserNotFound   = &Error{Message: "User not found.", Err: common.ErrUnauthorized}
	ErrWrongPassword  = &Error{Message: "Incorrect password.", Err: common.ErrUnauthorized}
	ErrGenericFailure = &Error{Message: "An error occurred."}
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Service registers and signs in users and issues session tokens.
type Service struct {
	users  UserStore
	tokens *JWTService
	cost   int
}

func NewService(users UserStore, tokens *JWTService) *Service {
	return &Service{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Register creates the user and returns a session token for them.
func (s *Service) Register(ctx context.Context, email, password string) (*models.User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}
	if len(password) < MinPasswordLength {
		return nil, "", ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials and returns a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrWrongPassword
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *Service) User(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) Tokens() *JWTService {
	return s.tokens
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
