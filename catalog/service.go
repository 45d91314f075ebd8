package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/creastat/shophub"
)

// Service answers catalog queries over a Source.
type Service struct {
	src Source
}

// NewService creates a catalog service.
func NewService(src Source) *Service {
	return &Service{src: src}
}

// All returns every product.
func (s *Service) All(ctx context.Context) ([]shophub.Product, error) {
	return s.src.Products(ctx)
}

// ByID returns the product with the given id.
func (s *Service) ByID(ctx context.Context, id int) (*shophub.Product, error) {
	products, err := s.src.Products(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("product %d: %w", id, shophub.ErrNotFound)
}

// Lookup resolves a product id given as a string, as carts store them.
func (s *Service) Lookup(ctx context.Context, productID string) (*shophub.Product, error) {
	id, err := strconv.Atoi(strings.TrimSpace(productID))
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", productID, shophub.ErrNotFound)
	}
	return s.ByID(ctx, id)
}

// Index returns the catalog keyed by string product id.
func (s *Service) Index(ctx context.Context) (map[string]shophub.Product, error) {
	products, err := s.src.Products(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]shophub.Product, len(products))
	for _, p := range products {
		out[strconv.Itoa(p.ID)] = p
	}
	return out, nil
}

// ByCategory returns the products of a category, matched case-insensitively.
// An empty result is ErrNotFound.
func (s *Service) ByCategory(ctx context.Context, category string) ([]shophub.Product, error) {
	products, err := s.src.Products(ctx)
	if err != nil {
		return nil, err
	}

	var out []shophub.Product
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("category %q: %w", category, shophub.ErrNotFound)
	}
	return out, nil
}

// Search returns products whose title or description contains query,
// case-insensitively. No match is an empty, non-nil slice.
func (s *Service) Search(ctx context.Context, query string) ([]shophub.Product, error) {
	products, err := s.src.Products(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := []shophub.Product{}
	if q == "" {
		return out, nil
	}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Description), q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Categories returns the distinct categories, sorted.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.src.Products(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out, nil
}
