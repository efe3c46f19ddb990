// internal/domain/listing/entity.go
package listing

import (
	"database/sql"
	"time"
)

type ListingType string

const (
	TypeSale    ListingType = "sale"
	TypeRental  ListingType = "rental"
	TypeAuction ListingType = "auction"
)

type ListingStatus string

const (
	StatusDraft     ListingStatus = "draft"
	StatusPublished ListingStatus = "published"
	StatusArchived  ListingStatus = "archived"
)

// Listing is a property advert. Creation and promotion are gated by
// the owner's billing entitlements (max_listings, hero_slots,
// max_photos).
type Listing struct {
	ID          int64          `json:"id" db:"id"`
	OwnerID     int64          `json:"owner_id" db:"owner_id"`
	Title       string         `json:"title" db:"title"`
	Description sql.NullString `json:"description,omitempty" db:"description"`
	Type        ListingType    `json:"type" db:"listing_type"`
	Price       int64          `json:"price" db:"price"`
	City        string         `json:"city" db:"city"`
	Bedrooms    sql.NullInt32  `json:"bedrooms,omitempty" db:"bedrooms"`
	PhotoCount  int            `json:"photo_count" db:"photo_count"`
	Featured    bool           `json:"featured" db:"featured"`
	Status      ListingStatus  `json:"status" db:"status"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}
