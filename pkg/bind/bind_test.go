package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenera/backend/pkg/bind"
)

type subscribeBody struct {
	Email string `json:"email" validate:"required,email"`
}

func TestJSONDecodesAndValidates(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"fan@example.com"}`))

	var body subscribeBody
	errs, err := bind.JSON(req, &body)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, "fan@example.com", body.Email)
}

func TestJSONReturnsRuleFailures(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"not-an-email"}`))

	var body subscribeBody
	errs, err := bind.JSON(req, &body)
	require.NoError(t, err)
	assert.Contains(t, errs, "email")
}

func TestJSONRejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))

	var body subscribeBody
	_, err := bind.JSON(req, &body)
	assert.Error(t, err)
}

func TestJSONCapsBodySize(t *testing.T) {
	huge := `{"email":"` + strings.Repeat("a", 4<<20) + `@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(huge))

	var body subscribeBody
	_, err := bind.JSON(req, &body)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}
