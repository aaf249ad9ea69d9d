// Standalone simulated job service for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockbackend --port 5000
//
// Then in another terminal:
//
//	go run ./cmd/runboard serve -b http://localhost:5000
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/runboard/internal/mockbackend"
)

func main() {
	var (
		port     int
		links    int
		step     time.Duration
		failRate float64
	)

	cmd := &cobra.Command{
		Use:   "mockbackend",
		Short: "Run a simulated download job service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(port, mockbackend.Config{
				Links:    mockbackend.DefaultLinks(links),
				Proxies:  mockbackend.DefaultProxies,
				Step:     step,
				FailRate: failRate,
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 5000, "port to listen on")
	cmd.Flags().IntVar(&links, "links", 20, "number of links per run")
	cmd.Flags().DurationVar(&step, "step", time.Second, "time spent per link")
	cmd.Flags().Float64Var(&failRate, "fail-rate", 0.2, "probability that a link fails")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(port int, cfg mockbackend.Config) error {
	mock := mockbackend.New(cfg, slog.Default())
	defer mock.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mock.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	fmt.Printf("Mock job service listening on :%d\n", port)
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
