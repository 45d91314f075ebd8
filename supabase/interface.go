package supabase

import (
	"context"
	"time"

	"github.com/creastat/shophub"
)

// Store provides read access to the product catalog kept in Supabase.
type Store interface {
	// Products returns every active product.
	Products(ctx context.Context) ([]shophub.Product, error)

	// Product retrieves a product by ID.
	Product(ctx context.Context, id int) (*shophub.Product, error)

	// Close closes the Supabase client and releases resources
	Close() error
}

// ProductRow represents a row of the products table.
type ProductRow struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	RatingRate  *float64  `json:"rating_rate,omitempty"`
	RatingCount *int      `json:"rating_count,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product converts the row to the catalog type.
func (r ProductRow) Product() shophub.Product {
	p := shophub.Product{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Image:       r.Image,
	}
	if r.RatingRate != nil {
		p.Rating = &shophub.Rating{Rate: *r.RatingRate}
		if r.RatingCount != nil {
			p.Rating.Count = *r.RatingCount
		}
	}
	return p
}
