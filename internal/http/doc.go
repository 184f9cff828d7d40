// Package http provides the HTTP client used by the HTTP blob store.
//
// The Client in this package handles:
//   - User-Agent headers
//   - File downloads with progress tracking
//   - File name lookup from Content-Disposition via HEAD requests
//   - Timeout handling
//
// # Basic Usage
//
//	client := http.NewClient(http.WithTimeout(30 * time.Second))
//
//	name, err := client.FileName(ctx, url)
//
//	client.DownloadFile(ctx, url, "/path/to/card.png", func(written, total int64) {
//	    fmt.Printf("%d bytes\n", written)
//	})
//
// Non-2xx responses are returned as *StatusError so callers can tell a
// missing asset from a transport failure.
package http
