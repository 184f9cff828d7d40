package blob

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	httpc "github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/http"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/logger"
)

// HTTPStore fetches assets over HTTP from a URL template.
//
// The asset name comes from the Content-Disposition header of a HEAD
// request. 404 and 410 responses are reported as ErrNotFound.
type HTTPStore struct {
	client   *httpc.Client
	template string
	logger   *zap.Logger
}

// NewHTTPStore creates an HTTPStore. An empty template uses
// DefaultURLTemplate; a template without "{id}" gets the id appended.
func NewHTTPStore(cfg HTTPConfig, log *zap.Logger, opts ...httpc.Option) *HTTPStore {
	template := cfg.URLTemplate
	if template == "" {
		template = DefaultURLTemplate
	}
	if !strings.Contains(template, "{id}") {
		template += "{id}"
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpc.WithTimeout(cfg.Timeout))
	}

	return &HTTPStore{
		client:   httpc.NewClient(opts...),
		template: template,
		logger:   logger.OrNop(log).Named("blob.http"),
	}
}

// URL returns the download URL for id.
func (s *HTTPStore) URL(id string) string {
	return strings.ReplaceAll(s.template, "{id}", url.QueryEscape(id))
}

// ResolveName implements Store.
func (s *HTTPStore) ResolveName(ctx context.Context, id string) (string, error) {
	name, err := s.client.FileName(ctx, s.URL(id))
	if err != nil {
		return "", mapHTTPError(id, err)
	}
	s.logger.Debug("resolved name", zap.String("id", id), zap.String("name", name))
	return name, nil
}

// Fetch implements Store.
func (s *HTTPStore) Fetch(ctx context.Context, id, destPath string) error {
	if err := s.client.DownloadFile(ctx, s.URL(id), destPath, nil); err != nil {
		return mapHTTPError(id, err)
	}
	return nil
}

func mapHTTPError(id string, err error) error {
	var se *httpc.StatusError
	if errors.As(err, &se) && se.NotFound() {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return fmt.Errorf("fetch %s: %w", id, err)
}
