// Package blob fetches card image bytes by source id.
//
// A Store answers two questions about an asset: what it is called, and
// what its bytes are. Three backends are provided:
//
//   - HTTPStore downloads from a URL template, by default the public
//     Google Drive download endpoint
//   - S3Store reads objects from an S3 compatible bucket
//   - DirStore copies files from a local directory
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned when the store has no asset for an id.
var ErrNotFound = errors.New("blob not found")

// Store resolves and fetches image assets.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// ResolveName returns the asset's display file name, such as
	// "Island.png". An empty name with a nil error means the store has no
	// name for the asset. The name may consist of an extension only.
	ResolveName(ctx context.Context, id string) (string, error)

	// Fetch writes the asset's bytes to destPath, replacing any file there.
	Fetch(ctx context.Context, id, destPath string) error
}

// Backend names accepted by New.
const (
	BackendHTTP  = "http"
	BackendS3    = "s3"
	BackendLocal = "local"
)

// DefaultURLTemplate downloads publicly shared Google Drive files.
const DefaultURLTemplate = "https://drive.google.com/uc?export=download&id={id}"

// Config selects and configures a backend.
type Config struct {
	Backend string

	HTTP  HTTPConfig
	S3    S3Config
	Local LocalConfig
}

// HTTPConfig configures HTTPStore.
type HTTPConfig struct {
	// URLTemplate contains "{id}", replaced by the escaped source id.
	URLTemplate string
	Timeout     time.Duration
}

// S3Config configures S3Store.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	Prefix       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// LocalConfig configures DirStore.
type LocalConfig struct {
	Dir string
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg Config, log *zap.Logger) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendHTTP:
		return NewHTTPStore(cfg.HTTP, log), nil
	case BackendS3:
		s, err := NewS3Store(ctx, cfg.S3, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendLocal:
		s, err := NewDirStore(cfg.Local.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
