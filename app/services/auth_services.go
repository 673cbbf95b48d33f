package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/lumenera/backend/app/jobs"
	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/repositories"
	"github.com/lumenera/backend/config"
	"github.com/lumenera/backend/pkg/auth"
	"github.com/lumenera/backend/pkg/logger"
	"github.com/lumenera/backend/pkg/queue"
	"github.com/lumenera/backend/pkg/validate"
)

var (
	// ErrUserExists rejects registration on a taken email.
	ErrUserExists = errors.New("services: user already exists")

	// ErrInvalidCredentials covers both a missing account and a wrong
	// password, so login failures don't reveal which.
	ErrInvalidCredentials = errors.New("services: invalid credentials")

	// ErrInvalidEmail rejects a malformed registration email.
	ErrInvalidEmail = errors.New("services: invalid email")

	// ErrWeakPassword rejects passwords under eight characters.
	ErrWeakPassword = errors.New("services: password must be more than 8 characters")

	// ErrInvalidResetToken covers unknown and expired reset tokens alike.
	ErrInvalidResetToken = errors.New("services: invalid or expired token")
)

// resetTokenTTL is how long an emailed password-reset link stays valid.
const resetTokenTTL = time.Hour

// AuthService handles registration, login, admin login and password reset.
type AuthService struct {
	users repositories.UserRepository

	enqueue func(queue.Job) error
}

func NewAuthService(users repositories.UserRepository) *AuthService {
	return &AuthService{users: users, enqueue: queue.Dispatch}
}

// SetEnqueue overrides the job dispatcher. Used by tests.
func (s *AuthService) SetEnqueue(fn func(queue.Job) error) { s.enqueue = fn }

// registerInput carries the credential fields through validation; error
// keys match the wire names the frontend shows next to its form fields.
type registerInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type emailInput struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordInput struct {
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates an account and returns a signed session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	errs := validate.Struct(registerInput{Email: email, Password: password})
	if _, bad := errs["email"]; bad {
		return "", ErrInvalidEmail
	}
	if _, bad := errs["password"]; bad {
		return "", ErrWeakPassword
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	user := models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		CartData: models.CartData{},
	}
	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return "", ErrUserExists
		}
		return "", err
	}
	return auth.GenerateToken(user.ID.Hex())
}

// Login verifies credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !auth.CheckPassword(user.Password, password) {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateToken(user.ID.Hex())
}

// AdminLogin checks the configured admin credentials and returns an admin
// token. Comparison is constant-time.
func (s *AuthService) AdminLogin(email, password string) (string, error) {
	wantEmail, wantPass := config.AdminEmail(), config.AdminPassword()
	if wantEmail == "" || wantPass == "" {
		return "", ErrInvalidCredentials
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(wantEmail)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(wantPass)) == 1
	if !emailOK || !passOK {
		return "", ErrInvalidCredentials
	}
	return auth.GenerateAdminToken(email)
}

// ForgotPassword issues a one-hour reset token and queues the reset email.
// An unknown email is reported back as success so the endpoint can't be
// used to enumerate addresses.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	token := hex.EncodeToString(buf)

	if err := s.users.SetResetToken(ctx, user.ID.Hex(), token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	job := &jobs.PasswordResetEmailJob{
		To:       user.Email,
		ResetURL: fmt.Sprintf("%s/reset-password?token=%s", config.FrontendURL(), token),
	}
	if err := s.enqueue(job); err != nil {
		return err
	}
	return nil
}

// ResetPassword consumes a reset token and installs the new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if validate.HasErrors(validate.Struct(passwordInput{Password: newPassword})) {
		return ErrWeakPassword
	}
	user, err := s.users.FindByResetToken(ctx, token, time.Now())
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID.Hex(), hash)
}

// Subscribe queues the newsletter welcome email.
func (s *AuthService) Subscribe(email string) error {
	if validate.HasErrors(validate.Struct(emailInput{Email: email})) {
		return ErrInvalidEmail
	}
	return s.enqueue(&jobs.SubscriptionEmailJob{To: email})
}
