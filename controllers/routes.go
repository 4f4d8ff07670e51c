package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/princinho/eshopbackend/middleware"
	"github.com/princinho/eshopbackend/storage"
)

type RouteConfig struct {
	APIPrefix string
	// AuthLimiter guards login and registration; nil disables it.
	AuthLimiter gin.HandlerFunc
	// UploadDir is served at storage.LocalRoute when non-empty.
	UploadDir string
	// MaxUploadBytes caps product and gallery bodies; 0 disables the cap.
	MaxUploadBytes int64
}

// RegisterRoutes mounts the shop API. Reads of the catalogue, login and
// registration are public; everything else needs an admin token.
func RegisterRoutes(r *gin.Engine, app *App, rc RouteConfig) {
	if rc.UploadDir != "" {
		r.Static(storage.LocalRoute, rc.UploadDir)
	}

	api := r.Group(rc.APIPrefix)
	admin := []gin.HandlerFunc{middleware.AuthMiddleware(app.JWTSecret), middleware.RequireAdmin()}
	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		if rc.AuthLimiter == nil {
			return []gin.HandlerFunc{h}
		}
		return []gin.HandlerFunc{rc.AuthLimiter, h}
	}

	products := api.Group("/products")
	{
		products.GET("", app.GetProducts())
		products.GET("/:id", app.GetProduct())
		products.GET("/get/count", app.CountProducts())
		products.GET("/get/featured/:amount", app.GetFeaturedProducts())

		guarded := products.Group("", admin...)
		capped := middleware.BodyLimit(rc.MaxUploadBytes)
		guarded.POST("", capped, app.AddProduct())
		guarded.PUT("/:id", capped, app.UpdateProduct())
		guarded.DELETE("/:id", app.DeleteProduct())
		guarded.PUT("/gallery-images/:id", capped, app.UpdateGalleryImages())
	}

	categories := api.Group("/categories")
	{
		categories.GET("", app.GetCategories())
		categories.GET("/:id", app.GetCategory())

		guarded := categories.Group("", admin...)
		guarded.POST("", app.AddCategory())
		guarded.PUT("/:id", app.UpdateCategory())
		guarded.DELETE("/:id", app.DeleteCategory())
	}

	users := api.Group("/users")
	{
		users.POST("/login", limited(app.Login())...)
		users.POST("/register", limited(app.Register())...)
		users.PUT("/me/password", middleware.AuthMiddleware(app.JWTSecret), app.ChangeMyPassword())

		guarded := users.Group("", admin...)
		guarded.GET("", app.GetUsers())
		guarded.GET("/:id", app.GetUser())
		guarded.GET("/get/count", app.CountUsers())
		guarded.POST("", app.CreateUser())
		guarded.PUT("/:id", app.UpdateUser())
		guarded.DELETE("/:id", app.DeleteUser())
	}
}
