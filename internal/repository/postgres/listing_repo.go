// internal/repository/postgres/listing_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"beedab-service/internal/domain/listing"
	xerrors "beedab-service/internal/pkg/errors"
)

type ListingRepository struct {
	db Querier
}

func NewListingRepository(db Querier) *ListingRepository {
	return &ListingRepository{db: db}
}

const listingColumns = `id, owner_id, title, description, listing_type, price, city, bedrooms, photo_count, featured, status, created_at, updated_at`

func scanListing(row pgx.Row) (*listing.Listing, error) {
	var l listing.Listing
	err := row.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.Description, &l.Type, &l.Price,
		&l.City, &l.Bedrooms, &l.PhotoCount, &l.Featured, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a new listing
func (r *ListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	query := `
		INSERT INTO listings (owner_id, title, description, listing_type, price, city, bedrooms, photo_count, featured, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		l.OwnerID, l.Title, l.Description, l.Type, l.Price,
		l.City, l.Bedrooms, l.PhotoCount, l.Featured, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// FindByID retrieves a listing by ID
func (r *ListingRepository) FindByID(ctx context.Context, id int64) (*listing.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns)

	l, err := scanListing(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}

	return l, nil
}

// ListByOwner retrieves all listings of one owner, newest first
func (r *ListingRepository) ListByOwner(ctx context.Context, ownerID int64) ([]listing.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE owner_id = $1 ORDER BY created_at DESC`, listingColumns)

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	listings := []listing.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, *l)
	}

	return listings, rows.Err()
}

// MarkFeatured promotes a listing into a hero slot
func (r *ListingRepository) MarkFeatured(ctx context.Context, id, ownerID int64) error {
	query := `UPDATE listings SET featured = TRUE, updated_at = $1 WHERE id = $2 AND owner_id = $3`

	result, err := r.db.Exec(ctx, query, time.Now(), id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to feature listing: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
