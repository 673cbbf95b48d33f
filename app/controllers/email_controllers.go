package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumenera/backend/app/jobs"
	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/pkg/queue"
	"github.com/lumenera/backend/pkg/response"
)

// EmailController serves the storefront's email endpoints. Mail goes out
// through the queue so a slow SMTP server never blocks a request.
type EmailController struct {
	auth *services.AuthService
}

func NewEmailController(auth *services.AuthService) *EmailController {
	return &EmailController{auth: auth}
}

// SendPurchase queues a purchase confirmation for an explicit recipient.
// Settlement already queues one automatically; this endpoint lets the
// storefront re-send it.
func (c *EmailController) SendPurchase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email  string   `json:"email"`
		Names  []string `json:"productNames"`
		Images []string `json:"productImages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}
	if body.Email == "" || len(body.Names) == 0 {
		response.Fail(w, "Email and product names are required")
		return
	}

	if err := queue.Dispatch(&jobs.PurchaseEmailJob{To: body.Email, Names: body.Names, Images: body.Images}); err != nil {
		response.Fail(w, "Failed to send email")
		return
	}
	response.Message(w, "Email sent successfully!")
}

// Subscribe queues the newsletter welcome email.
func (c *EmailController) Subscribe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	if err := c.auth.Subscribe(body.Email); err != nil {
		if errors.Is(err, services.ErrInvalidEmail) {
			response.Fail(w, "Invalid email")
			return
		}
		response.Fail(w, err.Error())
		return
	}
	response.Message(w, "Subscribed successfully!")
}

// ForgotPassword issues a reset token and queues the reset link email. The
// reply is the same whether or not the address exists.
func (c *EmailController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	if err := c.auth.ForgotPassword(r.Context(), body.Email); err != nil {
		response.Fail(w, err.Error())
		return
	}
	response.Message(w, "If the account exists, a reset email is on its way.")
}

// ResetPassword consumes a token and installs the new password.
func (c *EmailController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	if err := c.auth.ResetPassword(r.Context(), body.Token, body.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidResetToken):
			response.Fail(w, "Invalid or expired token.")
		case errors.Is(err, services.ErrWeakPassword):
			response.Fail(w, "Password must be more than 8 characters")
		default:
			response.Fail(w, err.Error())
		}
		return
	}
	response.Message(w, "Password reset successfully.")
}
