package services

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/app/repositories"
	"github.com/allinbuy/api/pkg/database"
	"github.com/allinbuy/api/pkg/storage"
)

// ProductService wraps catalogue reads and admin writes.
type ProductService struct {
	products *repositories.ProductRepository
}

func NewProductService(products *repositories.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// List returns active products matching filter.
func (s *ProductService) List(filter repositories.ProductFilter) ([]models.Product, database.Pagination, error) {
	return s.products.List(filter)
}

// Featured returns the featured-products strip for the storefront.
func (s *ProductService) Featured(limit int) ([]models.Product, error) {
	if limit <= 0 || limit > 20 {
		limit = 8
	}
	return s.products.Featured(limit)
}

// Find returns one product with category and images.
func (s *ProductService) Find(id uint) (models.Product, error) {
	return s.products.FindByID(id)
}

// FindBySlug returns one product by its URL slug.
func (s *ProductService) FindBySlug(slug string) (models.Product, error) {
	return s.products.FindBySlug(slug)
}

// Create persists a new product. The slug is derived from the name when
// not provided.
func (s *ProductService) Create(product *models.Product) error {
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	if product.Status == "" {
		product.Status = models.ProductActive
	}
	return s.products.Create(product)
}

// Update persists changes to an existing product.
func (s *ProductService) Update(product *models.Product) error {
	return s.products.Update(product)
}

// Deactivate soft-deletes a product so it disappears from the storefront
// but stays referenced by historical order lines.
func (s *ProductService) Deactivate(id uint) error {
	return s.products.Delete(id)
}

// AttachImage stores an uploaded image on the configured storage disk and
// records it against the product.
func (s *ProductService) AttachImage(productID uint, header *multipart.FileHeader, main bool) (models.ProductImage, error) {
	f, err := header.Open()
	if err != nil {
		return models.ProductImage{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	path := fmt.Sprintf("productos/%d/%s", productID, sanitizeFilename(header.Filename))
	if err := storage.PutStream(path, f); err != nil {
		return models.ProductImage{}, fmt.Errorf("store image: %w", err)
	}

	img := models.ProductImage{ProductID: productID, Path: path, Main: main}
	if err := s.products.AddImage(&img); err != nil {
		// Best effort: do not leave an orphaned file behind.
		storage.Delete(path) //nolint:errcheck
		return models.ProductImage{}, err
	}
	return img, nil
}

// ImageURL resolves the public URL for a stored image path.
func (s *ProductService) ImageURL(path string) string {
	return storage.URL(path)
}

// Slugify lowercases name and collapses anything non-alphanumeric into
// single hyphens. Shared by products and categories.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	return Slugify(strings.TrimSuffix(base, ext)) + strings.ToLower(ext)
}
