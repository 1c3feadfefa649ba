package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwhyun/finbot/internal/chat"
	"github.com/jwhyun/finbot/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chatbot HTTP server",
	Long: `Starts the finbot HTTP server: synchronous and asynchronous chat
endpoints, task polling and a WebSocket chat channel.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		ctx := context.Background()
		a, err := buildApp(ctx, cfg)
		exitOnError(err)
		defer a.Close()

		a.queue.Start(ctx)
		defer a.queue.Stop()

		srv := server.New(server.Config{
			Port:     cfg.Server.Port,
			AllowAll: cfg.Server.AllowAll,
		}, chat.NewHandler(a.service, a.queue))

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			exitOnError(err)
		case sig := <-sigCh:
			log.Printf("finbot: received %s, shutting down", sig)
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("finbot: shutdown: %v", err)
			}
		}
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "override the configured server port")
	rootCmd.AddCommand(serveCmd)
}
