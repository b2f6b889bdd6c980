// Command graphd serves a diagram for live editing in the browser.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"cdr.dev/slog"
	"github.com/pkg/browser"

	"github.com/ha1tch/nodegraph/pkg/cliopts"
	"github.com/ha1tch/nodegraph/pkg/config"
	"github.com/ha1tch/nodegraph/pkg/log"
	"github.com/ha1tch/nodegraph/pkg/metrics"
	"github.com/ha1tch/nodegraph/pkg/server"
)

func main() {
	ctx := log.Stderr(context.Background())
	defer log.Sync(ctx)

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Error(ctx, "graphd failed", slog.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	o := cliopts.New("graphd", args)
	addr := o.String("NODEGRAPH_ADDR", "addr", "a", "localhost:8080", "listen address")
	cfgPath := o.String("NODEGRAPH_CONFIG", "config", "c", config.Path(), "style file")
	watch, err := o.Bool("NODEGRAPH_WATCH", "watch", "w", true, "reload the style file when it changes")
	if err != nil {
		return err
	}
	open, err := o.Bool("NODEGRAPH_OPEN", "open", "", false, "open the editor in a browser")
	if err != nil {
		return err
	}
	help := o.Flags.BoolP("help", "h", false, "show help")
	if err := o.Parse(); err != nil {
		return err
	}
	if *help {
		fmt.Printf("Usage: graphd [options]\n\n%s", o.Help())
		return nil
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	reg := metrics.NewRegistry()
	srv := server.New(ctx, server.Options{
		Width:   cfg.Canvas.Width,
		Height:  cfg.Canvas.Height,
		Graph:   opts,
		Metrics: reg,
	})

	hs := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", slog.F("addr", *addr))
		errc <- hs.ListenAndServe()
	}()

	if *watch {
		go func() {
			err := config.Watch(ctx, *cfgPath, func(cfg config.File) {
				opts, err := cfg.Options()
				if err != nil {
					log.Warn(ctx, "ignoring style", slog.Error(err))
					return
				}
				srv.SetOptions(opts)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Warn(ctx, "style watch stopped", slog.Error(err))
			}
		}()
	}
	if *open {
		url := "http://" + *addr + "/"
		if err := openURL(ctx, url); err != nil {
			log.Warn(ctx, "opening browser", slog.F("url", url), slog.Error(err))
		}
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// openURL opens url in $BROWSER if set, else the system browser.
func openURL(ctx context.Context, url string) error {
	if b := os.Getenv("BROWSER"); b != "" {
		cmd := browserCommand(ctx, b, url)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("failed to run %v (out: %q): %w", cmd.Args, out, err)
		}
		return nil
	}
	return browser.OpenURL(url)
}

// browserCommand runs the $BROWSER command line through sh with url as $1.
func browserCommand(ctx context.Context, cmdline, url string) *exec.Cmd {
	return exec.CommandContext(ctx, "sh", "-c", fmt.Sprintf("%s \"$1\"", cmdline), "--", url)
}
