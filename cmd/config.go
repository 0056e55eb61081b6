package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/arcanaland/scrybe/internal/config"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and reset the configuration",
	Long:  `Commands for the configuration file in XDG_CONFIG_HOME/scrybe.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Show prints the configuration after the file, .env and SCRYBE_*
environment variables have been applied.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("# %s\n", config.GetConfigFilePath())
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Reset the configuration file to the defaults",
	Long: `Init writes the default configuration, replacing the current file.
A missing file is created on first run of any command.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigFilePath()
		if err := config.Save(config.Default()); err != nil {
			return fmt.Errorf("error writing config: %v", err)
		}
		fmt.Println("Wrote default configuration to", path)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
