package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenera/backend/app/jobs"
	"github.com/lumenera/backend/app/repositories/memory"
	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/pkg/auth"
	"github.com/lumenera/backend/pkg/queue"
)

func newAuthFixture() (*services.AuthService, *memory.UserRepository, *[]queue.Job) {
	users := memory.NewUserRepository()
	svc := services.NewAuthService(users)
	var sent []queue.Job
	svc.SetEnqueue(func(job queue.Job) error {
		sent = append(sent, job)
		return nil
	})
	return svc, users, &sent
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	token, err := svc.Register(ctx, "Ari", "ari@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.False(t, claims.Admin)

	token2, err := svc.Login(ctx, "ari@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token2)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ari", "not-an-email", "hunter2hunter2")
	assert.ErrorIs(t, err, services.ErrInvalidEmail)

	_, err = svc.Register(ctx, "Ari", "ari@example.com", "short")
	assert.ErrorIs(t, err, services.ErrWeakPassword)

	_, err = svc.Register(ctx, "Ari", "ari@example.com", "hunter2hunter2")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "Ari Again", "ari@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, services.ErrUserExists)
}

func TestRegisterPasswordBoundary(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ari", "ari@example.com", "1234567")
	assert.ErrorIs(t, err, services.ErrWeakPassword, "seven characters rejected")

	_, err = svc.Register(ctx, "Bram", "bram@example.com", "12345678")
	assert.NoError(t, err, "eight characters accepted")
}

func TestSubscribeRejectsMalformedEmail(t *testing.T) {
	svc, _, sent := newAuthFixture()

	assert.ErrorIs(t, svc.Subscribe("not-an-email"), services.ErrInvalidEmail)
	assert.ErrorIs(t, svc.Subscribe(""), services.ErrInvalidEmail)
	assert.Empty(t, *sent)

	require.NoError(t, svc.Subscribe("fan@example.com"))
	require.Len(t, *sent, 1)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ari", "ari@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "ari@example.com", "wrong-password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAdminLoginUnconfigured(t *testing.T) {
	svc, _, _ := newAuthFixture()
	// No ADMIN_EMAIL/ADMIN_PASSWORD in the test environment.
	_, err := svc.AdminLogin("admin@example.com", "whatever")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestForgotAndResetPassword(t *testing.T) {
	svc, users, sent := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ari", "ari@example.com", "hunter2hunter2")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "ari@example.com"))
	require.Len(t, *sent, 1)
	reset, ok := (*sent)[0].(*jobs.PasswordResetEmailJob)
	require.True(t, ok)
	assert.Equal(t, "ari@example.com", reset.To)

	// Pull the token out of the emailed link.
	idx := strings.Index(reset.ResetURL, "token=")
	require.GreaterOrEqual(t, idx, 0)
	token := reset.ResetURL[idx+len("token="):]

	require.NoError(t, svc.ResetPassword(ctx, token, "new-password-99"))

	_, err = svc.Login(ctx, "ari@example.com", "new-password-99")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "ari@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	// The token is single-use.
	err = svc.ResetPassword(ctx, token, "another-password")
	assert.ErrorIs(t, err, services.ErrInvalidResetToken)

	user, err := users.FindByEmail(ctx, "ari@example.com")
	require.NoError(t, err)
	assert.Empty(t, user.ResetToken)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	svc, _, sent := newAuthFixture()
	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))
	assert.Empty(t, *sent, "no email for unknown addresses")
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, "Ari", "ari@example.com", "hunter2hunter2")
	require.NoError(t, err)
	user, err := users.FindByEmail(ctx, "ari@example.com")
	require.NoError(t, err)

	require.NoError(t, users.SetResetToken(ctx, user.ID.Hex(), "stale-token", time.Now().Add(-time.Minute)))

	err = svc.ResetPassword(ctx, "stale-token", "new-password-99")
	assert.ErrorIs(t, err, services.ErrInvalidResetToken)
}
