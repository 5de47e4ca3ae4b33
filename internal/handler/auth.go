package handler

import (
	"errors"
	"net/http"

	"fruitsight/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler interface {
	Signup(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
}

type authHandler struct {
	authService service.AuthService
	log         *logrus.Logger
}

func NewAuthHandler(authService service.AuthService, log *logrus.Logger) AuthHandler {
	return &authHandler{authService: authService, log: log}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LogoutRequest struct {
	Email string `json:"email"`
}

func (h *authHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for signup: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide all required fields"})
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": validationMessage(err)})
		case errors.Is(err, service.ErrAccountAlreadyExists):
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists"})
		default:
			h.log.Errorf("Failed to sign up user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during registration"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":    result.Account.ID,
			"name":  result.Account.Name,
			"email": result.Account.Email,
		},
	})
}

func (h *authHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for login: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide both email and password"})
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": validationMessage(err)})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		default:
			h.log.Errorf("Failed to log in user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *authHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Errorf("Failed to bind JSON for logout: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email is required to logout"})
		return
	}

	err := h.authService.Logout(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": validationMessage(err)})
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		default:
			h.log.Errorf("Failed to log out user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error during logout"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// validationMessage strips the sentinel prefix so the client sees only the
// human-readable part.
func validationMessage(err error) string {
	msg := err.Error()
	prefix := service.ErrValidation.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
