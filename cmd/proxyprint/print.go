package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/download"
)

var printFlags struct {
	output       string
	format       string
	backend      string
	images       string
	dryRun       bool
	deleteImages bool
}

var printCmd = &cobra.Command{
	Use:   "print [paths...]",
	Short: "Fetch card images and render order pages",
	Long: `Print reads every order given as a file or found in a directory, fetches the
card images into the image cache and writes <order>_page_<n>.pdf (or .png) files
into the output directory.

Invalid orders are reported and skipped; the remaining orders are printed.
Slots whose image could not be fetched are left empty.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if flags.Changed("output") {
			settings.OutputPath = printFlags.output
		}
		if flags.Changed("format") {
			settings.OutputFormat = printFlags.format
		}
		if flags.Changed("backend") {
			settings.BlobBackend = printFlags.backend
		}
		if flags.Changed("images") {
			settings.ImagesPath = printFlags.images
		}
		if flags.Changed("delete-images") {
			settings.DeleteImages = printFlags.deleteImages
		}

		ctx, cancel := signalContext()
		defer cancel()

		manager := download.NewManager(settings, printEvent,
			download.WithLogger(log),
			download.WithDryRun(printFlags.dryRun),
		)

		fmt.Println(infoColor.Sprint("🃏 Proxy Print"))
		fmt.Println(rule())
		fmt.Println()

		if err := manager.Initialize(ctx, args); err != nil {
			return fmt.Errorf("initializing: %w", err)
		}
		if len(manager.Orders()) == 0 {
			return fmt.Errorf("no valid order to print")
		}

		if printFlags.dryRun {
			fmt.Println("\n[Dry run - nothing fetched or written]")
		} else {
			fmt.Println("\n📥 Fetching images...")
			fmt.Println()
		}

		if err := manager.StartDownloads(ctx); err != nil {
			if ctx.Err() != nil {
				return errCancelled
			}
			return fmt.Errorf("printing: %w", err)
		}
		if printFlags.dryRun {
			return nil
		}

		printSummary(manager)
		return nil
	},
}

func init() {
	flags := printCmd.Flags()
	flags.StringVarP(&printFlags.output, "output", "o", "", "output directory (overrides config)")
	flags.StringVarP(&printFlags.format, "format", "f", "", "output format: pdf or png")
	flags.StringVar(&printFlags.backend, "backend", "", "image source: http, s3 or local")
	flags.StringVar(&printFlags.images, "images", "", "image cache directory")
	flags.BoolVar(&printFlags.dryRun, "dry-run", false, "read and validate orders without fetching or writing")
	flags.BoolVar(&printFlags.deleteImages, "delete-images", false, "delete fetched images after printing")
}

func printEvent(event download.ProgressEvent) {
	if event.Level == download.LevelVerbose && !verbose {
		return
	}

	var prefix string
	switch event.Level {
	case download.LevelError:
		prefix = errorColor.Sprint("✗ ")
	case download.LevelWarning:
		prefix = warningColor.Sprint("! ")
	case download.LevelSuccess:
		prefix = successColor.Sprint("✓ ")
	case download.LevelInfo:
		prefix = infoColor.Sprint("› ")
	default:
		prefix = dimColor.Sprint("  ")
	}

	fmt.Println(prefix + event.Message)
}

func printSummary(manager *download.Manager) {
	files, filesTotal, pages, _ := manager.GetProgress()

	fmt.Println()
	fmt.Println(rule())
	for _, r := range manager.Reports() {
		line := fmt.Sprintf("%s: %d page(s), %d/%d slots filled (%.0f%%)",
			r.Order, r.Pages, r.Placed, r.Placed+r.Skipped, r.Completeness()*100)
		if r.Skipped > 0 {
			fmt.Println(warningColor.Sprint("  " + line))
		} else {
			fmt.Println("  " + line)
		}
		for _, a := range r.Artifacts {
			fmt.Println(dimColor.Sprint("    " + a))
		}
	}
	fmt.Println(successColor.Sprintf("✨ Complete! Fetched %d/%d images, wrote %d page file(s)", files, filesTotal, pages))
}
