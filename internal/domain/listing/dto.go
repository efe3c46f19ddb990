// internal/domain/listing/dto.go
package listing

type CreateListingRequest struct {
	Title       string `json:"title" binding:"required,max=255"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required,oneof=sale rental auction"`
	Price       int64  `json:"price" binding:"min=0"`
	City        string `json:"city" binding:"required,max=100"`
	Bedrooms    *int32 `json:"bedrooms" binding:"omitempty,min=0"`
	PhotoCount  int    `json:"photo_count" binding:"min=0"`
}
