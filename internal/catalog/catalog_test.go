package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const sampleYAML = `
products:
  - id: p1
    name: Mug
    category: Home
    price: "14.99"
  - id: p2
    name: Lamp
    category: Home
    price: 49.5
  - id: p3
    name: Novel
    category: Books
    price: 12
`

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	require.Equal(t, 3, c.Len())
	got, err := c.Get("p2")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)
	assert.True(t, decimal.RequireFromString("49.5").Equal(got.Price))

	assert.True(t, decimal.RequireFromString("49.5").Equal(c.MaxPrice()))
	assert.Equal(t, []string{"Home", "Books"}, c.Categories())
}

func TestLoad_KeepsOrder(t *testing.T) {
	c, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	var ids []string
	for _, p := range c.List() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"bad yaml", "products: [", "decode catalog"},
		{"bad price", "products:\n  - {id: a, name: A, price: cheap}", "invalid price"},
		{"missing id", "products:\n  - {name: A, price: 1}", "empty id"},
		{"missing name", "products:\n  - {id: a, price: 1}", "empty name"},
		{"negative price", "products:\n  - {id: a, name: A, price: -1}", "negative price"},
		{"duplicate id", "products:\n  - {id: a, name: A, price: 1}\n  - {id: a, name: B, price: 2}", "duplicate id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_EmptyDocument(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)

	assert.Equal(t, 0, c.Len())
	assert.True(t, c.MaxPrice().IsZero())
	assert.Empty(t, c.Categories())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 12, c.Len())
	assert.True(t, decimal.RequireFromString("249.99").Equal(c.MaxPrice()))
	assert.Contains(t, c.Categories(), "Electronics")
}

func TestGet_NotFound(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Get("nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDefaultPriceRange(t *testing.T) {
	c, err := New([]domain.Product{
		{ID: "a", Name: "A", Price: decimal.NewFromInt(5)},
		{ID: "b", Name: "B", Price: decimal.NewFromInt(80)},
	})
	require.NoError(t, err)

	r := c.DefaultPriceRange()
	assert.True(t, r.Min.IsZero())
	assert.True(t, decimal.NewFromInt(80).Equal(r.Max))
}

func TestList_ReturnsCopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	list := c.List()
	list[0].Name = "changed"

	p, err := c.Get(list[0].ID)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", p.Name)
}
