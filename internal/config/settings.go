package config

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/blob"
	ioutils "github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/io"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/layout"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. PROXYPRINT_OUTPUT_PATH.
const EnvPrefix = "PROXYPRINT_"

// Settings holds all configuration options.
type Settings struct {
	// Paths
	OutputPath string `json:"output_path" toml:"output_path" env:"OUTPUT_PATH"`
	ImagesPath string `json:"images_path" toml:"images_path" env:"IMAGES_PATH"`

	// Output
	OutputFormat string  `json:"output_format" toml:"output_format" env:"OUTPUT_FORMAT"` // pdf, png
	RasterDPI    float64 `json:"raster_dpi" toml:"raster_dpi" env:"RASTER_DPI"`
	DeleteImages bool    `json:"delete_images" toml:"delete_images" env:"DELETE_IMAGES"`

	// Blob store
	BlobBackend     string  `json:"blob_backend" toml:"blob_backend" env:"BLOB_BACKEND"` // http, s3, local
	HTTPURLTemplate string  `json:"http_url_template" toml:"http_url_template" env:"HTTP_URL_TEMPLATE"`
	HTTPTimeout     float64 `json:"http_timeout" toml:"http_timeout" env:"HTTP_TIMEOUT"`
	S3Bucket        string  `json:"s3_bucket" toml:"s3_bucket" env:"S3_BUCKET"`
	S3Region        string  `json:"s3_region" toml:"s3_region" env:"S3_REGION"`
	S3Endpoint      string  `json:"s3_endpoint" toml:"s3_endpoint" env:"S3_ENDPOINT"`
	S3Prefix        string  `json:"s3_prefix" toml:"s3_prefix" env:"S3_PREFIX"`
	S3AccessKey     string  `json:"-" toml:"-" env:"S3_ACCESS_KEY"`
	S3SecretKey     string  `json:"-" toml:"-" env:"S3_SECRET_KEY"`
	S3UsePathStyle  bool    `json:"s3_use_path_style" toml:"s3_use_path_style" env:"S3_USE_PATH_STYLE"`
	LocalDir        string  `json:"local_dir" toml:"local_dir" env:"LOCAL_DIR"`

	// Download settings
	MaxConcurrentOrders   int     `json:"max_concurrent_orders" toml:"max_concurrent_orders" env:"MAX_CONCURRENT_ORDERS"`
	MaxConcurrentImages   int     `json:"max_concurrent_images" toml:"max_concurrent_images" env:"MAX_CONCURRENT_IMAGES"`
	DownloadMaxRetries    int     `json:"download_max_retries" toml:"download_max_retries" env:"DOWNLOAD_MAX_RETRIES"`
	DownloadRetryCooldown float64 `json:"download_retry_cooldown" toml:"download_retry_cooldown" env:"DOWNLOAD_RETRY_COOLDOWN"`
	DownloadRetryExponent float64 `json:"download_retry_exponent" toml:"download_retry_exponent" env:"DOWNLOAD_RETRY_EXPONENT"`

	// Card and page geometry
	CardWidthMM  float64 `json:"card_width_mm" toml:"card_width_mm" env:"CARD_WIDTH_MM"`
	CardHeightMM float64 `json:"card_height_mm" toml:"card_height_mm" env:"CARD_HEIGHT_MM"`
	BleedMM      float64 `json:"bleed_mm" toml:"bleed_mm" env:"BLEED_MM"`
	MarginX      float64 `json:"margin_x" toml:"margin_x" env:"MARGIN_X"`
	MarginY      float64 `json:"margin_y" toml:"margin_y" env:"MARGIN_Y"`
	SpacingXMM   float64 `json:"spacing_x_mm" toml:"spacing_x_mm" env:"SPACING_X_MM"`
	SpacingYMM   float64 `json:"spacing_y_mm" toml:"spacing_y_mm" env:"SPACING_Y_MM"`
	PageSize     string  `json:"page_size" toml:"page_size" env:"PAGE_SIZE"` // a4, letter
	GridColumns  int     `json:"grid_columns" toml:"grid_columns" env:"GRID_COLUMNS"`
	GridRows     int     `json:"grid_rows" toml:"grid_rows" env:"GRID_ROWS"`
	CutMarkSize  float64 `json:"cut_mark_size" toml:"cut_mark_size" env:"CUT_MARK_SIZE"`

	// Logging
	LogLevel  string `json:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	LogFormat string `json:"log_format" toml:"log_format" env:"LOG_FORMAT"`
	LogOutput string `json:"log_output" toml:"log_output" env:"LOG_OUTPUT"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	lc := layout.DefaultConfig()
	return &Settings{
		OutputPath: "output",
		ImagesPath: filepath.Join(GetXDGCacheHome(), "proxyprint", "images"),

		OutputFormat: "pdf",
		RasterDPI:    150,
		DeleteImages: false,

		BlobBackend:     blob.BackendHTTP,
		HTTPURLTemplate: blob.DefaultURLTemplate,
		HTTPTimeout:     60,
		S3Region:        "us-east-1",

		MaxConcurrentOrders:   1,
		MaxConcurrentImages:   8,
		DownloadMaxRetries:    5,
		DownloadRetryCooldown: 0.2,
		DownloadRetryExponent: 4.0,

		CardWidthMM:  lc.CardWidthMM,
		CardHeightMM: lc.CardHeightMM,
		BleedMM:      lc.BleedMM,
		MarginX:      lc.MarginX,
		MarginY:      lc.MarginY,
		SpacingXMM:   lc.SpacingXMM,
		SpacingYMM:   lc.SpacingYMM,
		PageSize:     "a4",
		GridColumns:  lc.Columns,
		GridRows:     lc.Rows,
		CutMarkSize:  lc.CutMarkSize,

		LogLevel:  "info",
		LogFormat: "console",
		LogOutput: "stderr",
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetXDGCacheHome returns XDG_CACHE_HOME or default path
func GetXDGCacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return xdgCache
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".cache")
}

// DefaultPath returns the path to the config file
func DefaultPath() string {
	return filepath.Join(GetXDGConfigHome(), "proxyprint", "config.toml")
}

// Load reads settings from a TOML (.toml) or JSON file, then applies
// PROXYPRINT_* environment overrides. A missing file yields the defaults
// with overrides applied.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := settings.decode(path, data); err != nil {
			return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	if err := settings.ApplyEnv(); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Settings) decode(path string, data []byte) error {
	if isTOML(path) {
		_, err := toml.Decode(string(data), s)
		return err
	}
	return json.Unmarshal(data, s)
}

// ApplyEnv overrides fields from PROXYPRINT_* environment variables.
// Unset variables leave fields untouched.
func (s *Settings) ApplyEnv() error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("config: failed to parse environment variables: %w", err)
	}
	return nil
}

// Save writes settings as TOML or JSON depending on the file extension.
// Credentials are never written.
func (s *Settings) Save(path string) error {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	data, err := s.Encode(path)
	if err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(context.Background(), path, data)
}

// Encode renders the settings in the format implied by path.
func (s *Settings) Encode(path string) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(s); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// ToLayoutConfig converts settings to a layout.Config. It fails for an
// unknown page size; other values are checked by layout.NewGrid.
func (s *Settings) ToLayoutConfig() (layout.Config, error) {
	page, ok := layout.PageSize(s.PageSize)
	if !ok {
		return layout.Config{}, fmt.Errorf("%w: unknown page size %q", layout.ErrInvalidConfig, s.PageSize)
	}

	return layout.Config{
		CardWidthMM:  s.CardWidthMM,
		CardHeightMM: s.CardHeightMM,
		BleedMM:      s.BleedMM,
		MarginX:      s.MarginX,
		MarginY:      s.MarginY,
		SpacingXMM:   s.SpacingXMM,
		SpacingYMM:   s.SpacingYMM,
		MMToPt:       layout.MMToPt,
		Page:         page,
		Columns:      s.GridColumns,
		Rows:         s.GridRows,
		CutMarkSize:  s.CutMarkSize,
	}, nil
}

// ToBlobConfig converts settings to a blob.Config.
func (s *Settings) ToBlobConfig() blob.Config {
	return blob.Config{
		Backend: s.BlobBackend,
		HTTP: blob.HTTPConfig{
			URLTemplate: s.HTTPURLTemplate,
			Timeout:     time.Duration(s.HTTPTimeout * float64(time.Second)),
		},
		S3: blob.S3Config{
			Bucket:       s.S3Bucket,
			Region:       s.S3Region,
			Endpoint:     s.S3Endpoint,
			Prefix:       s.S3Prefix,
			AccessKey:    s.S3AccessKey,
			SecretKey:    s.S3SecretKey,
			UsePathStyle: s.S3UsePathStyle,
		},
		Local: blob.LocalConfig{Dir: s.LocalDir},
	}
}

// ToLoggerConfig converts settings to a logger.Config.
func (s *Settings) ToLoggerConfig() *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = s.LogLevel
	cfg.Format = s.LogFormat
	cfg.Output = s.LogOutput
	return cfg
}
