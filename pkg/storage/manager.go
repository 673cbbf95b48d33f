package storage

import (
	"fmt"
	"strings"
	"sync"

	"github.com/lumenera/backend/config"
	"github.com/lumenera/backend/pkg/logger"
)

var (
	managerMu sync.RWMutex
	disks     = map[string]Disk{"local": nil}
	// def starts at "local" so tests can Register a fake disk without
	// calling Connect.
	def = "local"
)

// Connect boots the configured disks. Call once at startup, after
// config.Load.
func Connect() {
	managerMu.Lock()
	defer managerMu.Unlock()

	def = config.StorageDefault()
	disks["local"] = newLocalDisk()

	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk()
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			disks["s3"] = d
		}
	}
}

// Register plugs in a Disk under name, replacing any existing one.
func Register(name string, d Disk) {
	managerMu.Lock()
	disks[name] = d
	managerMu.Unlock()
}

// Use returns the named disk ("local" or "s3").
func Use(name string) Disk {
	managerMu.RLock()
	d, ok := disks[name]
	managerMu.RUnlock()
	if !ok || d == nil {
		panic(fmt.Sprintf("storage: disk %q is not configured", name))
	}
	return d
}

func defaultD() Disk { return Use(defName()) }

func defName() string {
	managerMu.RLock()
	defer managerMu.RUnlock()
	return def
}

// Put writes content to path on the default disk.
func Put(path string, content []byte) error { return defaultD().Put(path, content) }

// Delete removes path from the default disk.
func Delete(path string) error { return defaultD().Delete(path) }

// URL returns the public URL for path on the default disk.
func URL(path string) string { return defaultD().URL(path) }

// PathOf maps a public URL produced by URL back to its disk path. The
// second return is false when the URL belongs to another disk or host,
// such as a card image that predates a storage move.
func PathOf(publicURL string) (string, bool) {
	base := defaultD().URL("")
	rest, ok := strings.CutPrefix(publicURL, base)
	if !ok || rest == "" {
		return "", false
	}
	return strings.TrimLeft(rest, "/"), true
}
