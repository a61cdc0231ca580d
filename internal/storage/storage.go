// Package storage puts uploaded media into a blob store and hands back a
// public URL for it.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/muse/pkg/config"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
	DriverGCS   = "gcs"
)

// Object describes a blob to store.
type Object struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
}

// Store is a blob store for media files.
type Store interface {
	// Put writes the object and returns its public URL.
	Put(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg *config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
	case DriverS3:
		return NewS3Store(ctx, cfg)
	case DriverGCS:
		return NewGCSStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// NewKey builds a collision-free key for an upload, grouped by couple and
// month. The original extension is kept so browsers can guess the type.
func NewKey(coupleID uint, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(filename, "\\", "/"))))
	if len(ext) > 10 {
		ext = ""
	}
	return fmt.Sprintf("couples/%d/%s/%s%s", coupleID, now.UTC().Format("2006/01"), uuid.NewString(), ext)
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
