// Package controllers holds the HTTP handlers. Each controller is a thin
// translation layer: decode the body, call the service, write the
// {success, ...} envelope. Business rules live in app/services.
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/pkg/response"
)

// UserController serves register, login and admin login.
type UserController struct {
	auth *services.AuthService
}

func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{auth: auth}
}

func (c *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	token, err := c.auth.Register(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserExists):
			response.Fail(w, "User already exists")
		case errors.Is(err, services.ErrInvalidEmail):
			response.Fail(w, "Invalid email")
		case errors.Is(err, services.ErrWeakPassword):
			response.Fail(w, "Password must be more than 8 characters")
		default:
			response.Fail(w, err.Error())
		}
		return
	}
	response.OK(w, response.M{"token": token})
}

func (c *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	token, err := c.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Fail(w, "Invalid credentials")
			return
		}
		response.Fail(w, err.Error())
		return
	}
	response.OK(w, response.M{"token": token})
}

func (c *UserController) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Fail(w, "Invalid request body")
		return
	}

	token, err := c.auth.AdminLogin(body.Email, body.Password)
	if err != nil {
		response.Fail(w, "INVALID CREDENTIALS")
		return
	}
	response.OK(w, response.M{"token": token, "isAdmin": true})
}
