// internal/service/listing/listing_service.go
package listing

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"beedab-service/internal/domain/billing"
	"beedab-service/internal/domain/listing"
	xerrors "beedab-service/internal/pkg/errors"
)

// ListingStore is implemented by postgres.ListingRepository.
type ListingStore interface {
	Create(ctx context.Context, l *listing.Listing) error
	FindByID(ctx context.Context, id int64) (*listing.Listing, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]listing.Listing, error)
	MarkFeatured(ctx context.Context, id, ownerID int64) error
}

// Entitlements is the slice of the billing service the listing flow
// needs: spend a unit of a feature, or just look at the balance.
type Entitlements interface {
	ConsumeFeature(ctx context.Context, userID int64, featureKey string) error
	CheckFeature(ctx context.Context, userID int64, featureKey string) (*billing.EntitlementStatus, error)
}

const (
	featureMaxListings = "max_listings"
	featureMaxPhotos   = "max_photos"
	featureHeroSlots   = "hero_slots"
)

type Service struct {
	listings     ListingStore
	entitlements Entitlements
	logger       *zap.Logger
}

func NewService(listings ListingStore, entitlements Entitlements, logger *zap.Logger) *Service {
	return &Service{
		listings:     listings,
		entitlements: entitlements,
		logger:       logger,
	}
}

// Create publishes a new listing, spending one max_listings unit. The
// photo count is checked against max_photos without consuming it;
// photos are bounded per listing, not across the account.
func (s *Service) Create(ctx context.Context, ownerID int64, req *listing.CreateListingRequest) (*listing.Listing, error) {
	if req.PhotoCount > 0 {
		status, err := s.entitlements.CheckFeature(ctx, ownerID, featureMaxPhotos)
		if err != nil {
			return nil, err
		}
		if status.Limit != billing.UnlimitedValue && int64(req.PhotoCount) > status.Limit {
			return nil, fmt.Errorf("%w: plan allows %d photos per listing", xerrors.ErrQuotaExceeded, status.Limit)
		}
	}

	if err := s.entitlements.ConsumeFeature(ctx, ownerID, featureMaxListings); err != nil {
		return nil, err
	}

	l := &listing.Listing{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: sql.NullString{String: req.Description, Valid: req.Description != ""},
		Type:        listing.ListingType(req.Type),
		Price:       req.Price,
		City:        req.City,
		PhotoCount:  req.PhotoCount,
		Status:      listing.StatusPublished,
	}
	if req.Bedrooms != nil {
		l.Bedrooms = sql.NullInt32{Int32: *req.Bedrooms, Valid: true}
	}

	if err := s.listings.Create(ctx, l); err != nil {
		// The max_listings unit is already spent at this point.
		// Creation failures here are infrastructure errors, not
		// quota ones, so we surface them as-is.
		s.logger.Error("failed to create listing", zap.Int64("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("listing created",
		zap.Int64("listing_id", l.ID),
		zap.Int64("owner_id", ownerID),
		zap.String("city", l.City),
	)
	return l, nil
}

// Get returns one listing.
func (s *Service) Get(ctx context.Context, id int64) (*listing.Listing, error) {
	return s.listings.FindByID(ctx, id)
}

// ListMine returns the caller's listings, newest first.
func (s *Service) ListMine(ctx context.Context, ownerID int64) ([]listing.Listing, error) {
	return s.listings.ListByOwner(ctx, ownerID)
}

// Feature promotes a listing to a hero slot, spending one hero_slots
// unit. Only the owner may feature their listing.
func (s *Service) Feature(ctx context.Context, ownerID, listingID int64) (*listing.Listing, error) {
	l, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: not your listing", xerrors.ErrForbidden)
	}
	if l.Featured {
		return l, nil
	}

	if err := s.entitlements.ConsumeFeature(ctx, ownerID, featureHeroSlots); err != nil {
		return nil, err
	}

	if err := s.listings.MarkFeatured(ctx, listingID, ownerID); err != nil {
		return nil, err
	}

	s.logger.Info("listing featured", zap.Int64("listing_id", listingID), zap.Int64("owner_id", ownerID))
	l.Featured = true
	return l, nil
}
