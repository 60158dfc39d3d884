// Package catalog holds the read-only product list the storefront sells from.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

//go:embed catalog.yaml
var embedded []byte

// Catalog is an immutable, ordered set of products. It is safe for
// concurrent use because nothing mutates it after New returns.
type Catalog struct {
	products   []domain.Product
	byID       map[string]int
	maxPrice   decimal.Decimal
	categories []string
}

// New validates products and builds a catalog in the given order.
func New(products []domain.Product) (*Catalog, error) {
	c := &Catalog{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
		maxPrice: decimal.Zero,
	}
	seenCategory := make(map[string]struct{})

	for i, p := range products {
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("product #%d: empty id", i+1)
		case p.Name == "":
			return nil, fmt.Errorf("product %q: empty name", p.ID)
		case p.Price.IsNegative():
			return nil, fmt.Errorf("product %q: negative price %s", p.ID, p.Price)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("product %q: duplicate id", p.ID)
		}

		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
		if p.Price.GreaterThan(c.maxPrice) {
			c.maxPrice = p.Price
		}
		if _, ok := seenCategory[p.Category]; !ok && p.Category != "" {
			seenCategory[p.Category] = struct{}{}
			c.categories = append(c.categories, p.Category)
		}
	}

	return c, nil
}

// record mirrors the file format. Prices are read as text so they keep their
// exact decimal value whether written quoted or not.
type record struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image"`
}

// Load parses a YAML catalog document of the form `products: [...]`.
func Load(r io.Reader) (*Catalog, error) {
	var doc struct {
		Products []record `yaml:"products"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return New(nil)
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(doc.Products))
	for _, rec := range doc.Products {
		price, err := decimal.NewFromString(rec.Price)
		if err != nil {
			return nil, fmt.Errorf("product %q: invalid price %q: %w", rec.ID, rec.Price, err)
		}
		products = append(products, domain.Product{
			ID:          rec.ID,
			Name:        rec.Name,
			Description: rec.Description,
			Category:    rec.Category,
			Price:       price,
			Image:       rec.Image,
		})
	}

	return New(products)
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(embedded))
}

// List returns all products in catalog order. The slice is a copy.
func (c *Catalog) List() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Len is the number of products.
func (c *Catalog) Len() int { return len(c.products) }

// Get returns the product with the given id.
func (c *Catalog) Get(id string) (domain.Product, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, apperrors.NotFound("product", id)
	}
	return c.products[i], nil
}

// MaxPrice is the highest product price, or zero for an empty catalog.
func (c *Catalog) MaxPrice() decimal.Decimal {
	return c.maxPrice
}

// DefaultPriceRange spans every product: zero up to MaxPrice.
func (c *Catalog) DefaultPriceRange() domain.PriceRange {
	return domain.PriceRange{Min: decimal.Zero, Max: c.maxPrice}
}

// Categories lists the distinct categories in first-seen order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}
