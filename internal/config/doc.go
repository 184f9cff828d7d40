// Package config provides configuration management for proxyprint.
//
// This package handles:
//   - Loading and saving settings from TOML or JSON files
//   - PROXYPRINT_* environment overrides
//   - Default configuration values
//   - Conversion to layout, blob and logger configs for other packages
//
// # Default Settings
//
//	settings := config.DefaultSettings()
//	// 63x88 mm cards with 1 mm bleed, 3x3 on A4
//	// Images fetched from Google Drive into ~/.cache/proxyprint/images
//	// PDFs written to ./output
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Files ending in .toml are read as TOML, anything else as JSON.
// Environment variables win over the file:
//
//	PROXYPRINT_OUTPUT_FORMAT=png PROXYPRINT_BLOB_BACKEND=local proxyprint print deck.xml
//
// S3 credentials are only read from PROXYPRINT_S3_ACCESS_KEY and
// PROXYPRINT_S3_SECRET_KEY and are never saved.
package config
