package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/princinho/eshopbackend/database"
	"github.com/princinho/eshopbackend/storage"
	"github.com/princinho/eshopbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// App carries the dependencies shared by every handler.
type App struct {
	Products   database.ProductRepository
	Categories database.CategoryRepository
	Users      database.UserRepository
	Files      storage.FileStore
	Images     *utils.FileValidator
	Logger     *zap.Logger

	JWTSecret        string
	TokenTTL         time.Duration
	MaxGalleryImages int
}

func (a *App) log() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// internalError logs err and answers 500 without leaking driver details.
func (a *App) internalError(c *gin.Context, op string, err error) {
	a.log().Error(op, zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// paramObjectID parses the :id path parameter. On failure it writes the 400
// response and returns false.
func paramObjectID(c *gin.Context, what string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + what + " id"})
		return bson.ObjectID{}, false
	}
	return id, true
}

// badBody answers 413 when err comes from an oversized body and 400 with msg
// otherwise.
func badBody(c *gin.Context, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// isMultipart reports whether the request carries multipart/form-data.
func isMultipart(c *gin.Context) bool {
	return c.ContentType() == binding.MIMEMultipartPOSTForm
}

// bindDataField decodes the JSON "data" multipart field into obj and runs the
// binding validator on it, mirroring ShouldBindJSON for plain bodies.
func bindDataField(c *gin.Context, obj any) error {
	raw := c.PostForm("data")
	if raw == "" {
		return errors.New("missing data")
	}
	if err := json.Unmarshal([]byte(raw), obj); err != nil {
		return errors.New("invalid data json")
	}
	return binding.Validator.ValidateStruct(obj)
}
