package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/repositories"
	"github.com/lumenera/backend/pkg/cache"
	"github.com/lumenera/backend/pkg/logger"
	"github.com/lumenera/backend/pkg/storage"
	"github.com/lumenera/backend/pkg/workerpool"
)

// productListCacheKey caches the full catalog listing; writes invalidate it.
const (
	productListCacheKey = "products:list"
	productListCacheTTL = 5 * time.Minute
)

// ImageUpload is one incoming product image from the multipart form.
type ImageUpload struct {
	Name    string
	Content []byte
}

// AddProductInput carries the admin form fields for a new product. The
// category lists mirror what the admin panel offers (models.Categories,
// models.SubCategories).
type AddProductInput struct {
	Name             string         `json:"name" validate:"required,max=200"`
	Description      string         `json:"description" validate:"required"`
	Price            float64        `json:"price" validate:"required"`
	Category         string         `json:"category" validate:"required,in=Bronze,Silver,Gold"`
	SubCategory      string         `json:"subCategory" validate:"required,in=Dragon,Human,Monster,Item,Spirit"`
	Rarities         map[string]int `json:"rarities"`
	Bestseller       bool           `json:"bestseller"`
	LatestCollection bool           `json:"latestCollection"`
}

// ProductService manages the catalog: image hosting through the storage
// disk, a cached listing, and the four-key rarity defaulting rule.
type ProductService struct {
	products repositories.ProductRepository
	uploads  *workerpool.Pool
}

func NewProductService(products repositories.ProductRepository) *ProductService {
	return &ProductService{
		products: products,
		uploads:  workerpool.New(4),
	}
}

// Add stores the product images concurrently through the upload pool, merges
// the submitted rarity counts over the zeroed four-key default, and creates
// the catalog entry.
func (s *ProductService) Add(ctx context.Context, input AddProductInput, images []ImageUpload) (models.Product, error) {
	urls, err := s.uploadImages(images)
	if err != nil {
		return models.Product{}, err
	}

	rarities := models.Rarities{}
	for variant, count := range input.Rarities {
		if !models.IsValidVariant(variant) {
			return models.Product{}, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
		}
		if count > 0 {
			rarities.Add(variant, count)
		}
	}

	product := models.Product{
		Name:             input.Name,
		Description:      input.Description,
		Price:            input.Price,
		Image:            urls,
		Category:         input.Category,
		SubCategory:      input.SubCategory,
		Rarities:         rarities,
		Bestseller:       input.Bestseller,
		LatestCollection: input.LatestCollection,
		Date:             time.Now().UnixMilli(),
	}
	if err := s.products.Create(ctx, &product); err != nil {
		return models.Product{}, err
	}
	s.invalidateListing()
	return product, nil
}

// uploadImages writes each image through the worker pool and returns the
// hosted URLs in submission order.
func (s *ProductService) uploadImages(images []ImageUpload) ([]string, error) {
	urls := make([]string, len(images))
	errs := make([]error, len(images))
	var wg sync.WaitGroup
	for i, img := range images {
		i, img := i, img
		wg.Add(1)
		task := func() {
			defer wg.Done()
			path := fmt.Sprintf("products/%s%s", primitive.NewObjectID().Hex(), filepath.Ext(img.Name))
			if err := storage.Put(path, img.Content); err != nil {
				errs[i] = fmt.Errorf("upload %s: %w", img.Name, err)
				return
			}
			urls[i] = storage.URL(path)
		}
		if err := s.uploads.SubmitWait(task); err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()
	return urls, errors.Join(errs...)
}

// List returns the whole catalog, served from cache when warm.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if cache.Get(productListCacheKey, &products) {
		return products, nil
	}
	products, err := s.products.All(ctx)
	if err != nil {
		return nil, err
	}
	if err := cache.Set(productListCacheKey, products, productListCacheTTL); err != nil {
		logger.Warn("product list cache write failed", "error", err)
	}
	return products, nil
}

// Single returns one product by id.
func (s *ProductService) Single(ctx context.Context, id string) (models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	return product, err
}

// Remove hard-deletes a product and its hosted images. Historical order
// snapshots keep their copied name, price and image URL.
func (s *ProductService) Remove(ctx context.Context, id string) error {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	s.invalidateListing()

	// Best effort: a leaked image is not worth failing the removal over.
	for _, url := range product.Image {
		path, ok := storage.PathOf(url)
		if !ok {
			continue
		}
		if err := storage.Delete(path); err != nil {
			logger.Warn("product image delete failed", "path", path, "error", err)
		}
	}
	return nil
}

func (s *ProductService) invalidateListing() {
	if err := cache.Forget(productListCacheKey); err != nil {
		logger.Warn("product list cache invalidation failed", "error", err)
	}
}

// Shutdown drains the upload pool.
func (s *ProductService) Shutdown() { s.uploads.Shutdown() }
