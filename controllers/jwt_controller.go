package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"agrisense-http-service/config"
	"agrisense-http-service/internal/error/code"
	"agrisense-http-service/internal/error/response"
	"agrisense-http-service/services"
	"agrisense-http-service/services/container"
)

// JWTController handles authentication requests
type JWTController struct {
	BaseControllerImpl
}

// NewJWTController creates a new authentication controller
func (f *ControllerFactory) NewJWTController(ctx *gin.Context) *JWTController {
	return &JWTController{
		BaseControllerImpl: BaseControllerImpl{
			Container: f.Container,
			Context:   ctx,
		},
	}
}

// LoginRequest is the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a JWT
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Context.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Context, "username and password are required")
		return
	}

	user, err := c.Container.GetUserService().Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Fail(c.Context, code.ErrUserPasswordIncorrect, nil)
			return
		}
		config.Error("login failed for %s: %v", req.Username, err)
		response.ServerError(c.Context)
		return
	}

	token, err := c.Container.GetJWTService().GenerateToken(user.ID, user.Role)
	if err != nil {
		config.Error("token generation failed: %v", err)
		response.ServerError(c.Context)
		return
	}

	response.Success(c.Context, gin.H{
		"token":      token,
		"user_id":    user.ID,
		"role":       user.Role,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	})
}

// HandleJWTFunc returns a Gin handler dispatching to the auth controller
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	factory := NewControllerFactory(container)

	return func(ctx *gin.Context) {
		controller := factory.NewJWTController(ctx)

		switch method {
		case "login":
			controller.Login()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
