// internal/handlers/listing/listing_handler.go
package listing

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beedab-service/internal/domain/listing"
	"beedab-service/internal/middleware"
	"beedab-service/internal/pkg/response"
	listingService "beedab-service/internal/service/listing"
)

type ListingHandler struct {
	listingService *listingService.Service
	logger         *zap.Logger
}

func NewListingHandler(svc *listingService.Service, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{
		listingService: svc,
		logger:         logger,
	}
}

// Create publishes a listing, gated by the caller's plan quota
func (h *ListingHandler) Create(c *gin.Context) {
	var req listing.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	ownerID := middleware.MustGetIdentityID(c)

	l, err := h.listingService.Create(c.Request.Context(), ownerID, &req)
	if err != nil {
		response.FromError(c, err, "failed to create listing")
		return
	}

	response.Success(c, http.StatusCreated, "listing created", l)
}

// Get returns one listing
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid listing id", err)
		return
	}

	l, err := h.listingService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err, "failed to load listing")
		return
	}

	response.Success(c, http.StatusOK, "listing", l)
}

// ListMine returns the caller's listings
func (h *ListingHandler) ListMine(c *gin.Context) {
	ownerID := middleware.MustGetIdentityID(c)

	listings, err := h.listingService.ListMine(c.Request.Context(), ownerID)
	if err != nil {
		response.FromError(c, err, "failed to list listings")
		return
	}

	response.Success(c, http.StatusOK, "your listings", listings)
}

// Feature promotes a listing into a hero slot
func (h *ListingHandler) Feature(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid listing id", err)
		return
	}

	ownerID := middleware.MustGetIdentityID(c)

	l, err := h.listingService.Feature(c.Request.Context(), ownerID, id)
	if err != nil {
		response.FromError(c, err, "failed to feature listing")
		return
	}

	response.Success(c, http.StatusOK, "listing featured", l)
}
