// Package storage holds the product card images. Two drivers cover the
// deployments we run: the local filesystem (default, served back under
// STORAGE_URL) and S3-compatible object storage (AWS, MinIO, R2).
//
//	storage.Connect()                          // once at boot
//	storage.Put("products/abc.png", data)      // default disk
//	url := storage.URL("products/abc.png")     // public URL for the catalog
//	storage.Delete("products/abc.png")         // when the card is removed
package storage

// Disk is what a driver must do: write an image, delete it, and say where
// the public can fetch it.
type Disk interface {
	Put(path string, content []byte) error
	Delete(path string) error
	URL(path string) string
}
