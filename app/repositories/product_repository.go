package repositories

import (
	"fmt"
	"time"

	"github.com/allinbuy/api/app/models"
	"github.com/allinbuy/api/pkg/cache"
	"github.com/allinbuy/api/pkg/database"
	"github.com/allinbuy/api/pkg/metrics"
	"gorm.io/gorm"
)

const featuredCacheKey = "allinbuy:products:featured"

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID uint
	Search     string
	MinPrice   string // decimal strings pass straight to the WHERE clause
	MaxPrice   string
	Featured   bool
	Page       int
	Limit      int
}

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List returns active products matching filter, with pagination.
func (r *ProductRepository) List(filter ProductFilter) ([]models.Product, database.Pagination, error) {
	query := r.db.Model(&models.Product{}).
		Preload("Category").
		Preload("Images").
		Where("status = ?", models.ProductActive)

	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR description LIKE ?", like, like)
	}
	if filter.MinPrice != "" {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != "" {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if filter.Featured {
		query = query.Where("featured = ?", true)
	}

	var products []models.Product
	pagination, err := database.Paginate(query.Order("created_at desc"), filter.Page, filter.Limit, &products)
	return products, pagination, err
}

// Featured returns the featured products, served from Redis when warm.
func (r *ProductRepository) Featured(limit int) ([]models.Product, error) {
	key := fmt.Sprintf("%s:%d", featuredCacheKey, limit)

	var products []models.Product
	if cache.Get(key, &products) {
		metrics.CacheHits.WithLabelValues("products").Inc()
		return products, nil
	}
	metrics.CacheMisses.WithLabelValues("products").Inc()

	err := r.db.Preload("Images").
		Where("status = ?", models.ProductActive).
		Where("featured = ? OR sold_count > ?", true, 5).
		Order("rating desc").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	cache.Set(key, products, 5*time.Minute) //nolint:errcheck
	return products, nil
}

// FindByID looks up a product by primary key, with category and images.
func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var product models.Product
	err := r.db.Preload("Category").Preload("Images").First(&product, id).Error
	return product, err
}

// FindBySlug looks up a product by its URL slug.
func (r *ProductRepository) FindBySlug(slug string) (models.Product, error) {
	var product models.Product
	err := r.db.Preload("Category").Preload("Images").
		Where("slug = ?", slug).First(&product).Error
	return product, err
}

// Create persists a new product and invalidates the featured cache.
func (r *ProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return err
	}
	r.invalidateFeatured()
	return nil
}

// Update persists changes to an existing product.
func (r *ProductRepository) Update(product *models.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		return err
	}
	r.invalidateFeatured()
	return nil
}

// Delete soft-deletes a product.
func (r *ProductRepository) Delete(id uint) error {
	if err := r.db.Delete(&models.Product{}, id).Error; err != nil {
		return err
	}
	r.invalidateFeatured()
	return nil
}

// AddImage attaches an image record to a product.
func (r *ProductRepository) AddImage(img *models.ProductImage) error {
	return r.db.Create(img).Error
}

func (r *ProductRepository) invalidateFeatured() {
	// Common limits; listing keys is not worth a SCAN here.
	for _, n := range []int{4, 8, 10, 12} {
		cache.Del(fmt.Sprintf("%s:%d", featuredCacheKey, n)) //nolint:errcheck
	}
}
