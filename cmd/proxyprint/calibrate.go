package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/download"
)

var calibrateFormat string

var calibrateCmd = &cobra.Command{
	Use:   "calibrate [file]",
	Short: "Write a calibration sheet",
	Long: `Calibrate writes a single page with the grid, the outline of every card and
the cut marks, using the configured geometry. Print it at 100% scale and
check the marks against a cutting mat before printing an order.

Without a file argument the sheet is written to the output directory as
calibration.pdf (or .png).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("format") {
			settings.OutputFormat = calibrateFormat
		}

		asm, err := download.NewAssembler(settings, log)
		if err != nil {
			return err
		}

		path := filepath.Join(settings.OutputPath, "calibration"+asm.Target().Extension())
		if len(args) == 1 {
			path = args[0]
		}

		if err := asm.RenderCalibration(path); err != nil {
			return fmt.Errorf("writing calibration sheet: %w", err)
		}
		fmt.Println(successColor.Sprint("✓ ") + "Calibration sheet written to " + path)
		return nil
	},
}

func init() {
	calibrateCmd.Flags().StringVarP(&calibrateFormat, "format", "f", "", "output format: pdf or png")
}
