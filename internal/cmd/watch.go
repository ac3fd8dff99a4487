package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/meikuraledutech/cpm"
)

// watchDebounce coalesces the burst of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Re-analyze a project file whenever it changes",
	Long: `Watch prints the analysis of FILE, then prints it again every time the
file is saved. Invalid edits are reported and the previous analysis stays on
screen until the file is fixed. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addAnalysisFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	_, opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	path := args[0]
	report := func() { analyzeAndRender(out, path, opts) }

	report()
	return watchFile(ctx, path, watchDebounce, report)
}

func analyzeAndRender(w io.Writer, path string, opts cpm.Options) {
	name, r, err := analyzeFile(path, opts)
	fmt.Fprintf(w, "\n%s\n", mutedStyle.Render(time.Now().Format("15:04:05")+" "+path))
	if err != nil {
		fmt.Fprintln(w, criticalStyle.Render("error: "+err.Error()))
		return
	}
	renderText(w, name, r)
}

// watchFile calls onChange after path is written, created or renamed into
// place, at most once per quiet period of length debounce. It watches the
// parent directory so editors that replace the file are still observed.
// It returns nil when ctx is done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(0)
	<-timer.C
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			timer.Reset(debounce)

		case <-timer.C:
			if pending {
				pending = false
				onChange()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		}
	}
}
