package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/runboard"
	"github.com/jpalmerr/runboard/internal/mockbackend"
)

func main() {
	// start a simulated job service on :5000
	mock := mockbackend.New(mockbackend.Config{
		Proxies:  mockbackend.DefaultProxies,
		Step:     1500 * time.Millisecond,
		FailRate: 0.25,
	}, slog.Default())
	defer mock.Close()

	ln, err := net.Listen("tcp", ":5000")
	if err != nil {
		slog.Error("failed to start mock backend", "error", err)
		os.Exit(1)
	}
	go func() {
		if err := http.Serve(ln, mock.Handler()); err != nil && !errors.Is(err, net.ErrClosed) {
			slog.Error("mock backend error", "error", err)
		}
	}()

	be, err := runboard.NewBackend("http://localhost:5000")
	if err != nil {
		slog.Error("failed to create backend", "error", err)
		os.Exit(1)
	}

	board, err := runboard.New(
		runboard.WithBackend(be),
		runboard.WithTitle("Download Job"),
		runboard.WithPort(8080),
		runboard.WithViewCallback(func(v runboard.View) {
			if v.Status.Label == runboard.LabelError {
				slog.Warn("backend unreachable", "error", v.Status.Error)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create runboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Runboard Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║   and press Start to run the simulated job            ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := board.Serve(ctx); err != nil {
		slog.Error("runboard error", "error", err)
		os.Exit(1)
	}
	_ = ln.Close()
}
