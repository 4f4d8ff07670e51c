package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/princinho/eshopbackend/database"
	"github.com/princinho/eshopbackend/dto"
	"github.com/princinho/eshopbackend/models"
	"github.com/princinho/eshopbackend/storage"
	"github.com/princinho/eshopbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

// GET /products?categories=id1,id2
func (a *App) GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter database.ProductFilter
		if raw := c.Query("categories"); raw != "" {
			ids, err := utils.StringsToObjectIDs(utils.SplitCSV(raw))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
				return
			}
			filter.CategoryIDs = ids
		}

		products, err := a.Products.List(c.Request.Context(), filter)
		if err != nil {
			a.internalError(c, "list products", err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GET /products/:id
func (a *App) GetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "product")
		if !ok {
			return
		}

		product, err := a.Products.Get(c.Request.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			a.internalError(c, "get product", err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// readProductBody accepts either a JSON body or a multipart form with the
// product JSON in "data" and an optional "image" file.
func readProductBody(c *gin.Context) (*dto.ProductDTO, *multipart.FileHeader, bool) {
	var body dto.ProductDTO
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(&body); err != nil {
			badBody(c, err, err.Error())
			return nil, nil, false
		}
		return &body, nil, true
	}

	if _, err := c.MultipartForm(); err != nil {
		badBody(c, err, "invalid multipart form")
		return nil, nil, false
	}
	if err := bindDataField(c, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, false
	}
	file, err := c.FormFile("image")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return nil, nil, false
	}
	return &body, file, true
}

// resolveCategory checks that the referenced category exists. It writes the
// error response itself and returns nil when the request must stop.
func (a *App) resolveCategory(c *gin.Context, raw string) *models.Category {
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return nil
	}
	cat, err := a.Categories.Get(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invalid Category"})
		return nil
	}
	if err != nil {
		a.internalError(c, "get category", err)
		return nil
	}
	return cat
}

// uploadImages stores files under the product's prefix and writes a 400 or
// 500 on failure.
func (a *App) uploadImages(c *gin.Context, id bson.ObjectID, productName string, files []*multipart.FileHeader) ([]string, bool) {
	urls, err := storage.UploadImages(c.Request.Context(), a.Files, a.Images, id.Hex(), productName, files)
	if errors.Is(err, storage.ErrInvalidUpload) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if err != nil {
		a.internalError(c, "upload images", err)
		return nil, false
	}
	return urls, true
}

// discard removes the product's own stored files best effort; URLs under
// another product's prefix are left alone and failures are only logged.
func (a *App) discard(c *gin.Context, id bson.ObjectID, urls []string) {
	if len(urls) == 0 {
		return
	}
	if err := storage.DeleteURLs(c.Request.Context(), a.Files, storage.ProductPrefix(id.Hex()), urls); err != nil {
		a.log().Warn("delete stored images", zap.Error(err), zap.Strings("urls", urls))
	}
}

func productFromDTO(body *dto.ProductDTO, category bson.ObjectID) models.Product {
	return models.Product{
		Name:            body.Name,
		Description:     body.Description,
		RichDescription: body.RichDescription,
		Image:           body.Image,
		Brand:           body.Brand,
		Price:           body.Price,
		Category:        category,
		CountInStock:    body.CountInStock,
		Rating:          body.Rating,
		NumReviews:      body.NumReviews,
		IsFeatured:      body.IsFeatured,
	}
}

// POST /products
func (a *App) AddProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, file, ok := readProductBody(c)
		if !ok {
			return
		}
		cat := a.resolveCategory(c, body.Category)
		if cat == nil {
			return
		}

		product := productFromDTO(body, cat.Id)
		product.Id = bson.NewObjectID()
		var uploaded []string
		if file != nil {
			if uploaded, ok = a.uploadImages(c, product.Id, body.Name, []*multipart.FileHeader{file}); !ok {
				return
			}
			product.Image = uploaded[0]
		}

		if err := a.Products.Create(c.Request.Context(), &product); err != nil {
			a.discard(c, product.Id, uploaded)
			a.internalError(c, "create product", err)
			return
		}

		c.JSON(http.StatusCreated, models.ProductView{Product: product, Category: cat})
	}
}

// PUT /products/:id
func (a *App) UpdateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "product")
		if !ok {
			return
		}
		body, file, ok := readProductBody(c)
		if !ok {
			return
		}
		cat := a.resolveCategory(c, body.Category)
		if cat == nil {
			return
		}

		ctx := c.Request.Context()
		existing, err := a.Products.Get(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			a.internalError(c, "get product", err)
			return
		}

		product := productFromDTO(body, cat.Id)
		product.Id = id
		if product.Image == "" {
			product.Image = existing.Image
		}
		var uploaded []string
		if file != nil {
			if uploaded, ok = a.uploadImages(c, id, body.Name, []*multipart.FileHeader{file}); !ok {
				return
			}
			product.Image = uploaded[0]
		}

		updated, err := a.Products.Update(ctx, &product)
		if err != nil {
			a.discard(c, id, uploaded)
			if errors.Is(err, database.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			a.internalError(c, "update product", err)
			return
		}

		if existing.Image != "" && existing.Image != updated.Image {
			a.discard(c, id, []string{existing.Image})
		}
		c.JSON(http.StatusOK, models.ProductView{Product: *updated, Category: cat})
	}
}

// DELETE /products/:id
func (a *App) DeleteProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "product")
		if !ok {
			return
		}

		deleted, err := a.Products.Delete(c.Request.Context(), id)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "product not found"})
			return
		}
		if err != nil {
			a.internalError(c, "delete product", err)
			return
		}

		a.discard(c, id, deleted.StoredImages())
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "the product is deleted"})
	}
}

// GET /products/get/count
func (a *App) CountProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := a.Products.Count(c.Request.Context())
		if err != nil {
			a.internalError(c, "count products", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"productCount": n})
	}
}

// GET /products/get/featured/:amount, where amount 0 means no limit.
func (a *App) GetFeaturedProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		amount, err := strconv.ParseInt(c.Param("amount"), 10, 64)
		if err != nil || amount < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a non-negative integer"})
			return
		}

		featured := true
		products, err := a.Products.List(c.Request.Context(), database.ProductFilter{Featured: &featured, Limit: amount})
		if err != nil {
			a.internalError(c, "list featured products", err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// PUT /products/gallery-images/:id
func (a *App) UpdateGalleryImages() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramObjectID(c, "product")
		if !ok {
			return
		}

		form, err := c.MultipartForm()
		if err != nil {
			badBody(c, err, "invalid multipart form")
			return
		}
		files := form.File["images"]
		if len(files) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no images provided"})
			return
		}
		if len(files) > a.MaxGalleryImages {
			c.JSON(http.StatusBadRequest, gin.H{"error": "too many images (max " + strconv.Itoa(a.MaxGalleryImages) + ")"})
			return
		}

		ctx := c.Request.Context()
		existing, err := a.Products.Get(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			return
		}
		if err != nil {
			a.internalError(c, "get product", err)
			return
		}

		urls, ok := a.uploadImages(c, id, existing.Name, files)
		if !ok {
			return
		}

		updated, err := a.Products.SetGallery(ctx, id, urls)
		if err != nil {
			a.discard(c, id, urls)
			if errors.Is(err, database.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			a.internalError(c, "update gallery", err)
			return
		}

		a.discard(c, id, existing.Images)
		c.JSON(http.StatusOK, models.ProductView{Product: *updated, Category: existing.Category})
	}
}
