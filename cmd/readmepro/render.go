package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kalambet/readmepro/internal/config"
	"github.com/kalambet/readmepro/internal/preview"
	"github.com/kalambet/readmepro/internal/profile"
	"github.com/kalambet/readmepro/internal/readme"
)

const renderDebounce = 200 * time.Millisecond

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Compile a profile file to README.md without a server",
	Long: `Compile a YAML or JSON profile file to Markdown. Missing fields take
their starting values, so a file with only a name and a few skills is enough.

Examples:
  readmepro render -f profile.yaml
  readmepro render -f profile.yaml -o - --preview
  readmepro render -f profile.yaml --watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		output, _ := cmd.Flags().GetString("output")
		watch, _ := cmd.Flags().GetBool("watch")
		show, _ := cmd.Flags().GetBool("preview")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg.Log.Level)
		if output == "" {
			output = cfg.Render.Output
		}

		r := renderer{
			in:     file,
			out:    output,
			stdout: cmd.OutOrStdout(),
		}
		if show {
			r.style, r.width = previewStyle(cfg), cfg.Preview.Width
		}

		if err := r.render(); err != nil {
			return err
		}
		if !watch {
			return nil
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return r.watch(ctx)
	},
}

func init() {
	renderCmd.Flags().StringP("file", "f", "", "profile file (YAML or JSON)")
	renderCmd.Flags().StringP("output", "o", "", "output path, - for stdout (default from render.output)")
	renderCmd.Flags().Bool("watch", false, "re-render whenever the profile file changes")
	renderCmd.Flags().Bool("preview", false, "also print a terminal preview")
	renderCmd.MarkFlagRequired("file")
}

type renderer struct {
	in     string
	out    string // "-" writes to stdout
	stdout io.Writer
	style  string // non-empty enables the terminal preview
	width  int
}

func (r renderer) render() error {
	s, err := profile.LoadFile(r.in)
	if err != nil {
		return err
	}
	md := readme.Compile(s)

	if r.out == "-" {
		fmt.Fprint(r.stdout, md)
	} else {
		if err := os.WriteFile(r.out, []byte(md), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", r.out, err)
		}
		printSuccess("Rendered %s -> %s (%d bytes)", r.in, r.out, len(md))
	}

	if r.style != "" {
		out, err := preview.Terminal(md, r.style, r.width)
		if err != nil {
			return err
		}
		fmt.Fprint(r.stdout, out)
	}
	return nil
}

// watch re-renders on writes to the input file until ctx is done. The
// directory is watched rather than the file so editors that replace the
// file on save keep triggering events.
func (r renderer) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(r.in)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", r.in, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	printStep("Watching %s (Ctrl-C to stop)", r.in)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			pending = time.After(renderDebounce)
		case <-pending:
			pending = nil
			if err := r.render(); err != nil {
				printError("%v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)
		}
	}
}
