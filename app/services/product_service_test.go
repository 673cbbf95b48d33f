package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenera/backend/app/models"
	"github.com/lumenera/backend/app/repositories/memory"
	"github.com/lumenera/backend/app/services"
	"github.com/lumenera/backend/pkg/storage"
	"github.com/lumenera/backend/pkg/validate"
)

// fakeDisk records what the catalog stores and deletes.
type fakeDisk struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func newFakeDisk() *fakeDisk {
	return &fakeDisk{files: map[string][]byte{}}
}

func (d *fakeDisk) Put(path string, content []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files[path] = content
	return nil
}

func (d *fakeDisk) Delete(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.files, path)
	d.deleted = append(d.deleted, path)
	return nil
}

func (d *fakeDisk) URL(path string) string {
	return "http://cdn.test/storage/" + path
}

func validInput() services.AddProductInput {
	return services.AddProductInput{
		Name:        "Emberwing",
		Description: "A dragon wreathed in cinders.",
		Price:       12.50,
		Category:    "Bronze",
		SubCategory: "Dragon",
		Rarities:    map[string]int{models.VariantStandard: 3},
	}
}

func TestAddHostsImagesAndStoresURLs(t *testing.T) {
	disk := newFakeDisk()
	storage.Register("local", disk)
	repo := memory.NewProductRepository()
	svc := services.NewProductService(repo)
	defer svc.Shutdown()

	product, err := svc.Add(context.Background(), validInput(), []services.ImageUpload{
		{Name: "front.png", Content: []byte("png-a")},
		{Name: "runed.png", Content: []byte("png-b")},
	})
	require.NoError(t, err)

	require.Len(t, product.Image, 2)
	for _, url := range product.Image {
		path, ok := storage.PathOf(url)
		require.True(t, ok, "catalog URL %q maps back to the disk", url)
		disk.mu.Lock()
		_, stored := disk.files[path]
		disk.mu.Unlock()
		assert.True(t, stored)
	}
	assert.Equal(t, 3, product.Rarities.Standard)
	assert.Zero(t, product.Rarities.Runed, "unsubmitted variants default to zero")
}

func TestRemoveDeletesHostedImages(t *testing.T) {
	disk := newFakeDisk()
	storage.Register("local", disk)
	repo := memory.NewProductRepository()
	svc := services.NewProductService(repo)
	defer svc.Shutdown()

	product, err := svc.Add(context.Background(), validInput(), []services.ImageUpload{
		{Name: "front.png", Content: []byte("png-a")},
	})
	require.NoError(t, err)
	require.Len(t, product.Image, 1)

	require.NoError(t, svc.Remove(context.Background(), product.ID.Hex()))

	disk.mu.Lock()
	defer disk.mu.Unlock()
	assert.Len(t, disk.deleted, 1, "hosted image removed with the product")
	assert.Empty(t, disk.files)
}

func TestRemoveSkipsForeignImageURLs(t *testing.T) {
	disk := newFakeDisk()
	storage.Register("local", disk)
	repo := memory.NewProductRepository()
	svc := services.NewProductService(repo)
	defer svc.Shutdown()

	p := models.Product{
		Name: "Warden", Price: 5,
		Image:    []string{"https://legacy-cdn.example/warden.png"},
		Category: "Silver", SubCategory: "Human",
	}
	require.NoError(t, repo.Create(context.Background(), &p))

	require.NoError(t, svc.Remove(context.Background(), p.ID.Hex()))
	disk.mu.Lock()
	defer disk.mu.Unlock()
	assert.Empty(t, disk.deleted, "URLs from another host are left alone")
}

func TestAddProductInputRules(t *testing.T) {
	input := validInput()
	assert.Empty(t, validate.Struct(input))

	input.Category = "Platinum"
	errs := validate.Struct(input)
	assert.Contains(t, errs, "category", "category must be one the admin panel offers")

	input = validInput()
	input.SubCategory = "Golem"
	errs = validate.Struct(input)
	assert.Contains(t, errs, "subCategory")

	input = validInput()
	input.Name = ""
	input.Price = 0
	errs = validate.Struct(input)
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "price")
}
