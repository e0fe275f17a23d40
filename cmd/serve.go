package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luckymoturi/AttendanceProject/internal/database/postgres"
	"github.com/luckymoturi/AttendanceProject/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance web server",
	Long: `Start the attendance web server.
The server exposes enrollment, check-in/check-out and reporting endpoints
under /api/v1. Face embeddings are computed by the external embedding
service configured via FACEID_URL.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// initIdentityHNSW builds or loads the HNSW index for fast identity matching.
func initIdentityHNSW(ctx context.Context, identityRepo *postgres.IdentityRepository, indexPath string) {
	if indexPath != "" {
		fmt.Printf("Loading identity HNSW index from %s...\n", indexPath)
	} else {
		fmt.Printf("Building in-memory HNSW index for identity matching...\n")
	}
	if err := identityRepo.EnableHNSW(ctx, indexPath); err != nil {
		fmt.Printf("Warning: Failed to build identity HNSW index: %v\n", err)
		fmt.Printf("Identity matching will use PostgreSQL queries (slower)\n")
	} else if indexPath != "" {
		fmt.Printf("Identity HNSW index ready with %d identities (persisted to %s)\n", identityRepo.HNSWCount(), indexPath)
	} else {
		fmt.Printf("Identity HNSW index built with %d identities (in-memory only)\n", identityRepo.HNSWCount())
	}
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Connecting to PostgreSQL database...\n")
	cfg, pool, err := connectDatabase()
	if err != nil {
		return err
	}
	defer pool.Close()

	svc, identityRepo, _ := buildService(cfg, pool)

	initIdentityHNSW(context.Background(), identityRepo, cfg.Database.HNSWIndexPath)

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(svc, port, host)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		if identityRepo.IsHNSWEnabled() {
			if err := identityRepo.SaveHNSWIndex(); err != nil {
				fmt.Printf("Warning: failed to save identity HNSW index: %v\n", err)
			} else if cfg.Database.HNSWIndexPath != "" {
				fmt.Println("Identity HNSW index saved to disk")
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting attendance server on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
