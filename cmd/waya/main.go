// Command waya runs the compositor core behind a line-oriented console, with
// an optional preview window and an HTTP endpoint for commands and metrics.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wayacreates/waya"
	"github.com/wayacreates/waya/host"
	"github.com/wayacreates/waya/preview"
)

// defaultHTTPAddr keeps the command endpoint on loopback; /command can read
// and write project files.
const defaultHTTPAddr = "127.0.0.1:9090"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "waya:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "YAML config file (defaults apply when empty)")
	debug := flag.Bool("debug", false, "Enable invariant checks and development logging")
	httpAddr := flag.String("http", defaultHTTPAddr, "Address for /command, /sessions and /metrics; empty disables it")
	showPreview := flag.Bool("preview", false, "Open the preview window")
	scriptPath := flag.String("script", "", "YAML command script to play at startup")
	projectPath := flag.String("project", "", "Project file to load at startup")
	watch := flag.Bool("watch", false, "Reload the -project file whenever it changes")
	shotDir := flag.String("screenshots", "screenshots", "Directory for F12 screenshots")
	flag.Parse()

	cfg := waya.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = waya.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	if *debug {
		cfg.Debug = true
	}

	var logger *zap.Logger
	var err error
	if cfg.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	cfg.Logger = logger

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := host.NewMetrics("waya", reg)
	if err != nil {
		return err
	}
	loop, err := host.New(cfg, host.WithMetrics(metrics))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if !*showPreview {
		g.Go(func() error { return loop.Run(gctx) })
	}
	if *httpAddr != "" {
		g.Go(func() error { return serveHTTP(gctx, *httpAddr, host.NewHandler(loop, reg), logger) })
	}
	if *watch && *projectPath != "" {
		g.Go(func() error { return loop.WatchProject(gctx, *projectPath) })
	}
	g.Go(func() error { return startup(gctx, loop, *projectPath, *scriptPath, logger) })

	// The console blocks on stdin, so it stays outside the group; EOF or
	// "quit" ends the program.
	go func() {
		console(gctx, loop, os.Stdin, os.Stdout)
		cancel()
	}()

	if *showPreview {
		// ebiten must own the main goroutine; it drives the loop with Pump.
		game := preview.New(loop, preview.Options{ScreenshotDir: *shotDir, Logger: logger})
		err := game.Run("waya")
		cancel()
		if werr := g.Wait(); err == nil {
			err = werr
		}
		return ignoreCanceled(err)
	}
	return ignoreCanceled(g.Wait())
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, host.ErrStopped) {
		return nil
	}
	return err
}

// startup loads the initial project and plays the startup script, in that
// order.
func startup(ctx context.Context, loop *host.Loop, projectPath, scriptPath string, log *zap.Logger) error {
	if projectPath != "" {
		res, err := loop.Execute(ctx, fmt.Sprintf("project.load %q", projectPath))
		if err != nil {
			return err
		}
		if !res.OK() {
			return fmt.Errorf("load %s: %s", projectPath, res.Message)
		}
		log.Info("project loaded", zap.String("path", projectPath))
	}
	if scriptPath == "" {
		return nil
	}
	script, err := host.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	results, err := loop.Play(ctx, script)
	if err != nil {
		return fmt.Errorf("script %s: %w", scriptPath, err)
	}
	log.Info("script finished", zap.String("path", scriptPath), zap.Int("commands", len(results)))
	return nil
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("http listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// console reads command lines from r until EOF, "quit" or ctx ends.
func console(ctx context.Context, loop *host.Loop, r io.Reader, w io.Writer) {
	sc := bufio.NewScanner(r)
	fmt.Fprint(w, "waya> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch line {
		case "":
		case "quit", "exit":
			return
		default:
			res, err := loop.Execute(ctx, line)
			if err != nil {
				return
			}
			fmt.Fprintln(w, res)
		}
		fmt.Fprint(w, "waya> ")
	}
}
