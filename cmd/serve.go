package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/arcanaland/scrybe/internal/web"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the card browser web UI",
	Long: `Serve starts an HTTP server with the card browser page. Every browser
session keeps its own current card, alternate arts and recently viewed list
in memory; nothing is persisted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listen, _ := cmd.Flags().GetString("listen")
		if listen == "" {
			listen = cfg.Listen
		}

		srv, err := web.NewServer(web.Options{
			API:        newClient(),
			Catalog:    cfg.Catalog(),
			SessionTTL: cfg.SessionTTL.Duration,
			Log:        logrus.StandardLogger(),
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logrus.WithFields(logrus.Fields{
			"addr": listen,
			"api":  cfg.APIBase,
		}).Info("starting server")
		if err := srv.ListenAndServe(ctx, listen); err != nil {
			return err
		}
		logrus.Info("server stopped")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "The address to listen on (default from config)")
}
