package controllers

import (
	"net/http"

	apperrors "storefront-service/errors"
	"storefront-service/middleware"
	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

const tokenCookieMaxAge = 24 * 60 * 60

type AuthController struct {
	auth          services.AuthService
	validator     *RequestValidator
	secureCookies bool
}

func NewAuthController(auth services.AuthService, secureCookies bool) *AuthController {
	return &AuthController{auth: auth, validator: NewRequestValidator(), secureCookies: secureCookies}
}

func (ac *AuthController) SignUp(c *gin.Context) {
	var req SignupRequest
	if err := ac.validator.Bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	if _, err := ac.auth.SignUp(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, "User Registered Successfully", nil)
}

// Login returns the user summary and token in the envelope and also sets
// the token cookie.
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := ac.validator.Bind(c, &req); err != nil {
		fail(c, err)
		return
	}

	user, token, err := ac.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, tokenCookieMaxAge, "/", "", ac.secureCookies, true)
	c.JSON(http.StatusOK, apperrors.Envelope{
		Success: true,
		Message: "Login successful",
		Data:    user,
		Token:   token,
	})
}

func (ac *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", ac.secureCookies, true)
	sendResponse(c, http.StatusOK, "Logged out successfully", nil)
}
