// Package ioutils provides file system and image utilities.
//
// This package contains functions for:
//   - File copying and atomic writing
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation and cleanup of downloaded images
//   - Image format detection, JPEG conversion and scaling
//
// # File Operations
//
//	err := ioutils.CopyFile(ctx, "/library/Island.png", "/cache/Islandabc.png")
//
//	err := ioutils.WriteFileAtomic(ctx, "/out/config.toml", data)
//
//	removed, err := ioutils.RemoveFiles(paths)
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("Fire // Ice.png") // Returns "Fire __ Ice.png"
//
// # Image Processing
//
// PNG, JPEG, GIF and WebP decoders are registered by this package.
//
//	svc := ioutils.NewImageService()
//	jpeg, _ := svc.ConvertToJPEG(ctx, webpData)
package ioutils
