package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eshopbackend/database"
	"github.com/princinho/eshopbackend/dto"
	"github.com/princinho/eshopbackend/models"
)

func (a *App) GetCategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := a.Categories.List(c.Request.Context())
		if err != nil {
			a.internalError(c, "list categories", err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (a *App) GetCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "category")
		if !ok {
			return
		}

		cat, err := a.Categories.Get(c.Request.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		if err != nil {
			a.internalError(c, "get category", err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}

func categoryFromDTO(body dto.CategoryDTO) (models.Category, bool) {
	cat := models.Category{
		Name:  strings.TrimSpace(body.Name),
		Icon:  strings.TrimSpace(body.Icon),
		Color: strings.TrimSpace(body.Color),
	}
	return cat, cat.Name != ""
}

func (a *App) AddCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cat, ok := categoryFromDTO(body)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}

		if err := a.Categories.Create(c.Request.Context(), &cat); err != nil {
			a.internalError(c, "create category", err)
			return
		}
		c.JSON(http.StatusCreated, cat)
	}
}

func (a *App) UpdateCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "category")
		if !ok {
			return
		}

		var body dto.CategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cat, ok := categoryFromDTO(body)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		cat.Id = id

		updated, err := a.Categories.Update(c.Request.Context(), &cat)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
			return
		}
		if err != nil {
			a.internalError(c, "update category", err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func (a *App) DeleteCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "category")
		if !ok {
			return
		}

		err := a.Categories.Delete(c.Request.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "category not found"})
			return
		}
		if err != nil {
			a.internalError(c, "delete category", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "the category is deleted"})
	}
}
