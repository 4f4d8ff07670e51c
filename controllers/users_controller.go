package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eshopbackend/database"
	"github.com/princinho/eshopbackend/dto"
	"github.com/princinho/eshopbackend/models"
	"github.com/princinho/eshopbackend/utils"
)

// GET /users
func (a *App) GetUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := a.Users.List(c.Request.Context())
		if err != nil {
			a.internalError(c, "list users", err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

// GET /users/:id
func (a *App) GetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "user")
		if !ok {
			return
		}

		user, err := a.Users.Get(c.Request.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		if err != nil {
			a.internalError(c, "get user", err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /users/get/count
func (a *App) CountUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := a.Users.Count(c.Request.Context())
		if err != nil {
			a.internalError(c, "count users", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userCount": n})
	}
}

// POST /users creates any account, admins included.
func (a *App) CreateUser() gin.HandlerFunc {
	return a.createUser(true)
}

// POST /users/register is the public sign-up; it never grants admin.
func (a *App) Register() gin.HandlerFunc {
	return a.createUser(false)
}

func (a *App) createUser(allowAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UserDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			a.internalError(c, "hash password", err)
			return
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: hash,
			Phone:        body.Phone,
			IsAdmin:      allowAdmin && body.IsAdmin,
			Street:       body.Street,
			Apartment:    body.Apartment,
			Zip:          body.Zip,
			City:         body.City,
			Country:      body.Country,
		}

		err = a.Users.Create(c.Request.Context(), &user)
		if errors.Is(err, database.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered", "field": "email"})
			return
		}
		if err != nil {
			a.internalError(c, "create user", err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// PUT /users/:id
func (a *App) UpdateUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "user")
		if !ok {
			return
		}

		var body dto.UpdateUserDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		user := models.User{
			ID:        id,
			Name:      body.Name,
			Email:     body.Email,
			Phone:     body.Phone,
			IsAdmin:   body.IsAdmin,
			Street:    body.Street,
			Apartment: body.Apartment,
			Zip:       body.Zip,
			City:      body.City,
			Country:   body.Country,
		}
		if body.Password != "" {
			hash, err := utils.HashPassword(body.Password)
			if err != nil {
				a.internalError(c, "hash password", err)
				return
			}
			user.PasswordHash = hash
		}

		updated, err := a.Users.Update(c.Request.Context(), &user)
		switch {
		case errors.Is(err, database.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		case errors.Is(err, database.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered", "field": "email"})
			return
		case err != nil:
			a.internalError(c, "update user", err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

// DELETE /users/:id
func (a *App) DeleteUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "user")
		if !ok {
			return
		}

		err := a.Users.Delete(c.Request.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user not found"})
			return
		}
		if err != nil {
			a.internalError(c, "delete user", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "the user is deleted"})
	}
}
