package cmd

import (
	"fmt"

	"github.com/arcanaland/scrybe/internal/browser"
	"github.com/arcanaland/scrybe/internal/config"
	"github.com/arcanaland/scrybe/internal/scryfall"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	logLevel string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "scrybe",
	Short: "Browse Magic: The Gathering cards",
	Long: `Scrybe browses Magic: The Gathering cards from the Scryfall card database.
Run 'scrybe serve' for the web UI, or use the random, search and show
commands to look at cards right in the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "The log level (debug, info, warn, error)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// setup loads .env, the config file and configures logging.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found")
	}

	c, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	cfg = c
	return nil
}

func newClient() *scryfall.Client {
	client := scryfall.NewClient(cfg.APIBase, cfg.UserAgent, cfg.Timeout.Duration)
	client.MaxPrintPages = cfg.MaxPrintPages
	return client
}

func newBrowser() *browser.Browser {
	return browser.New(newClient(),
		browser.WithCatalog(cfg.Catalog()),
		browser.WithLogger(logrus.StandardLogger()),
	)
}
