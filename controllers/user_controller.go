package controllers

import (
	"net/http"

	"storefront-service/services"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	users services.UserService
}

func NewUserController(users services.UserService) *UserController {
	return &UserController{users: users}
}

func (uc *UserController) ListUsers(c *gin.Context) {
	users, err := uc.users.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusOK, "Users fetched successfully", users)
}

func (uc *UserController) GetUser(c *gin.Context) {
	user, err := uc.users.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	sendResponse(c, http.StatusOK, "User fetched successfully", user)
}
