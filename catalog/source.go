// Package catalog serves the read-only product catalog. Products come from
// a Source (an upstream JSON feed, Supabase, or the built-in fixtures) and
// are cached in redis.
package catalog

import (
	"context"

	"github.com/creastat/shophub"
)

// Source loads the full product list.
type Source interface {
	Products(ctx context.Context) ([]shophub.Product, error)
}

// SourceType selects a Source implementation.
type SourceType string

const (
	SourceTypeHTTP     SourceType = "http"
	SourceTypeSupabase SourceType = "supabase"
	SourceTypeStatic   SourceType = "static"
)

// StaticSource serves a fixed product list.
type StaticSource struct {
	products []shophub.Product
}

// NewStaticSource returns a source over products. With no products it
// serves the built-in fixtures.
func NewStaticSource(products ...shophub.Product) *StaticSource {
	if len(products) == 0 {
		products = Fixtures()
	}
	return &StaticSource{products: products}
}

// Products implements Source.
func (s *StaticSource) Products(ctx context.Context) ([]shophub.Product, error) {
	out := make([]shophub.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

// Fixtures returns a small catalog for development and tests.
func Fixtures() []shophub.Product {
	return []shophub.Product{
		{
			ID:          1,
			Title:       "Fjallraven - Foldsack No. 1 Backpack, Fits 15 Laptops",
			Description: "Your perfect pack for everyday use and walks in the forest. Stash your laptop (up to 15 inches) in the padded sleeve.",
			Price:       109.95,
			Category:    "men's clothing",
			Image:       "https://fakestoreapi.com/img/81fPKd-2AYL._AC_SL1500_.jpg",
			Rating:      &shophub.Rating{Rate: 3.9, Count: 120},
		},
		{
			ID:          2,
			Title:       "Mens Casual Premium Slim Fit T-Shirts",
			Description: "Slim-fitting style, contrast raglan long sleeve, three-button henley placket, light weight and soft fabric.",
			Price:       22.3,
			Category:    "men's clothing",
			Image:       "https://fakestoreapi.com/img/71-3HjGNDUL._AC_SY879._SX._UX._SY._UY_.jpg",
			Rating:      &shophub.Rating{Rate: 4.1, Count: 259},
		},
		{
			ID:          3,
			Title:       "Mens Cotton Jacket",
			Description: "Great outerwear jackets for Spring, Autumn and Winter, suitable for many occasions such as working, hiking and camping.",
			Price:       55.99,
			Category:    "men's clothing",
			Image:       "https://fakestoreapi.com/img/71li-ujtlUL._AC_UX679_.jpg",
			Rating:      &shophub.Rating{Rate: 4.7, Count: 500},
		},
		{
			ID:          5,
			Title:       "John Hardy Women's Legends Naga Gold & Silver Dragon Station Chain Bracelet",
			Description: "From our Legends Collection, the Naga was inspired by the mythical water dragon that protects the ocean's pearl.",
			Price:       695,
			Category:    "jewelery",
			Image:       "https://fakestoreapi.com/img/71pWzhdJNwL._AC_UL640_QL65_ML3_.jpg",
			Rating:      &shophub.Rating{Rate: 4.6, Count: 400},
		},
		{
			ID:          9,
			Title:       "WD 2TB Elements Portable External Hard Drive - USB 3.0",
			Description: "USB 3.0 and USB 2.0 compatibility, fast data transfers, improve PC performance, high capacity.",
			Price:       64,
			Category:    "electronics",
			Image:       "https://fakestoreapi.com/img/61IBBVJvSDL._AC_SY879_.jpg",
			Rating:      &shophub.Rating{Rate: 3.3, Count: 203},
		},
		{
			ID:          13,
			Title:       "Acer SB220Q bi 21.5 inches Full HD (1920 x 1080) IPS Ultra-Thin",
			Description: "21.5 inches Full HD widescreen IPS display with Radeon free Sync technology. No compatibility for VESA mount.",
			Price:       599,
			Category:    "electronics",
			Image:       "https://fakestoreapi.com/img/81QpkIctqPL._AC_SX679_.jpg",
			Rating:      &shophub.Rating{Rate: 2.9, Count: 250},
		},
		{
			ID:          18,
			Title:       "MBJ Women's Solid Short Sleeve Boat Neck V",
			Description: "95% rayon 5% spandex, made in USA or imported, lightweight fabric with great stretch for comfort.",
			Price:       9.85,
			Category:    "women's clothing",
			Image:       "https://fakestoreapi.com/img/71z3kpMAYsL._AC_UY879_.jpg",
			Rating:      &shophub.Rating{Rate: 4.7, Count: 130},
		},
		{
			ID:          20,
			Title:       "DANVOUY Womens T Shirt Casual Cotton Short",
			Description: "95% cotton, 5% spandex. Casual, short sleeve, letter print, v-neck, fashion tees.",
			Price:       12.99,
			Category:    "women's clothing",
			Image:       "https://fakestoreapi.com/img/61pHAEJ4NML._AC_UX679_.jpg",
			Rating:      &shophub.Rating{Rate: 3.6, Count: 145},
		},
	}
}
