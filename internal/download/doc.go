// Package download provides the batch orchestration for printing orders:
// reading them, fetching their card images and rendering their pages.
//
// # Manager
//
// The Manager coordinates the entire process:
//
//  1. Expand input paths into order files
//  2. Parse and validate each order
//  3. Resolve image names and fetch images concurrently
//  4. Render every order once its images are in place
//  5. Delete fetched images (optional)
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	}, download.WithLogger(log))
//
//	err := manager.Initialize(ctx, []string{"orders/"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = manager.StartDownloads(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// The Manager uses configurable concurrency limits:
//   - MaxConcurrentOrders: How many orders to process in parallel
//   - MaxConcurrentImages: How many images per order to fetch in parallel
//
// An image used several times in one order, even on both faces, is fetched
// once. Fetches of the same file from different orders share a single
// download. Rendering of an order starts only after all of its fetches
// have finished.
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	}
//
// # Retry Logic
//
// Failed fetches are retried with exponential backoff, configurable via
// settings.DownloadMaxRetries, settings.DownloadRetryCooldown and
// settings.DownloadRetryExponent. A missing image is not retried.
package download
