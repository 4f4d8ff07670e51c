package dto

// ProductDTO is bound from a JSON body, or parsed from the "data" multipart
// field when an image file is sent alongside.
type ProductDTO struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description" binding:"required"`
	RichDescription string  `json:"richDescription"`
	Image           string  `json:"image"`
	Brand           string  `json:"brand"`
	Price           float64 `json:"price" binding:"gte=0"`
	Category        string  `json:"category" binding:"required"`
	CountInStock    int     `json:"countInStock" binding:"gte=0,lte=255"`
	Rating          float64 `json:"rating" binding:"gte=0"`
	NumReviews      int     `json:"numReviews" binding:"gte=0"`
	IsFeatured      bool    `json:"isFeatured"`
}
