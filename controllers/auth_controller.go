package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eshopbackend/database"
	"github.com/princinho/eshopbackend/dto"
	"github.com/princinho/eshopbackend/middleware"
	"github.com/princinho/eshopbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// POST /users/login
func (a *App) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user, err := a.Users.GetByEmail(c.Request.Context(), body.Email)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err != nil {
			a.internalError(c, "find user", err)
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		token, err := utils.GenerateAccessToken(user.ID.Hex(), user.IsAdmin, a.JWTSecret, a.TokenTTL)
		if err != nil {
			a.internalError(c, "sign token", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user.Email, "token": token})
	}
}

// PUT /users/me/password
func (a *App) ChangeMyPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ChangeMyPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		userID, err := bson.ObjectIDFromHex(c.GetString(middleware.ContextUserID))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid auth context"})
			return
		}

		user, err := a.Users.Get(c.Request.Context(), userID)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
			return
		}
		if err != nil {
			a.internalError(c, "get user", err)
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.CurrentPassword); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
			return
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			a.internalError(c, "hash password", err)
			return
		}
		user.PasswordHash = hash
		if _, err := a.Users.Update(c.Request.Context(), user); err != nil {
			a.internalError(c, "update password", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
