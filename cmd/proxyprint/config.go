package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/config"
	ioutils "github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/io"
)

var configForce bool

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the settings file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Long: `Show prints the settings after the config file and PROXYPRINT_* environment
variables have been applied. Credentials are never printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := settings.Encode(configPath)
		if err != nil {
			return err
		}
		fmt.Println(dimColor.Sprint("# " + configPath))
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ioutils.FileExists(configPath) && !configForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
		}
		if err := config.DefaultSettings().Save(configPath); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Println(successColor.Sprint("✓ ") + "Config written to " + configPath)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
