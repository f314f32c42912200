package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"imgopt/internal/config"
	"imgopt/internal/logger"
	"imgopt/internal/processor"
	"imgopt/internal/tui"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [flags] <path>...",
	Short: "Resize and re-encode images into an output folder",
	Long: "Resize each image by percentage or to a pixel width (aspect ratio preserved), re-encode it as\n" +
		"JPEG or PNG and write it to the output folder as <name>_opt.<ext>. Directories are skipped.",
	Args: cobra.MinimumNArgs(1),
	RunE: runOptimize,
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return err
	}

	settings, err := processor.NewSettings(processor.Options{
		OutputDir:      cfg.OutputDir,
		Quality:        cfg.Quality,
		Format:         cfg.Format,
		FilenamePrefix: cfg.Name,
		ResizeMode:     cfg.Mode,
		Resolution:     cfg.Resolution,
		AutoOrient:     cfg.AutoOrient,
	})
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{File: cfg.Log.File, Debug: cfg.Log.Debug})
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := processor.NewWorker(processor.NewRunner(log))
	out := cmd.OutOrStdout()

	var (
		summary processor.Summary
		runErr  error
	)
	if !cfg.NoTUI && isTerminal(out) {
		events := make(chan processor.Event, 64)
		program := tea.NewProgram(tui.NewModel(events, len(args), worker.Cancel))

		uiDone := make(chan struct{})
		go func() {
			if _, err := program.Run(); err != nil {
				worker.Cancel()
			}
			close(uiDone)
			// keep the worker unblocked if the UI exited early
			for range events {
			}
		}()

		if err := worker.Start(ctx, args, settings, processor.ChannelObserver(events)); err != nil {
			close(events)
			<-uiDone
			return err
		}
		summary, runErr = worker.Wait()
		close(events)
		<-uiDone
	} else {
		if err := worker.Start(ctx, args, settings, processor.WriterObserver{W: out, ShowProgress: true}); err != nil {
			return err
		}
		summary, runErr = worker.Wait()
	}

	if errors.Is(runErr, processor.ErrOutputDir) {
		return runErr
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, tui.RenderSummary("Summary", summaryRows(summary)))
	outPath := settings.OutputDir
	if abs, absErr := filepath.Abs(outPath); absErr == nil {
		outPath = abs
	}
	fmt.Fprintf(out, "Optimized files written to: %s\n", outPath)

	if runErr != nil {
		return fmt.Errorf("run interrupted: %w", runErr)
	}
	return nil
}

func summaryRows(s processor.Summary) []tui.SummaryRow {
	return []tui.SummaryRow{
		{Label: "Files processed", Value: fmt.Sprintf("%d / %d", s.Processed, s.Total)},
		{Label: "Skipped", Value: fmt.Sprintf("%d", s.Skipped)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed), Negative: s.Failed > 0},
		{Label: "Original size", Value: humanize.IBytes(uint64(s.OriginalBytes))},
		{Label: "Optimized size", Value: humanize.IBytes(uint64(s.OptimizedBytes))},
		{Label: "Space saved", Value: signedBytes(s.SavedBytes), Negative: s.SavedBytes < 0},
	}
}

func signedBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	flags := optimizeCmd.Flags()
	flags.StringP("output", "o", processor.DefaultOutputDir, "destination folder for optimized images")
	flags.IntP("quality", "q", 85, "JPEG quality (10-100)")
	flags.StringP("format", "f", "jpeg", "output format: jpeg, jpg or png")
	flags.StringP("name", "n", "", "shared output file name; every file is written to <name>.<ext> (last write wins)")
	flags.StringP("mode", "m", "percentage", "resize mode: percentage or pixels")
	flags.IntP("resolution", "r", 75, "percentage of the original size, or target width in pixels")
	flags.Bool("auto-orient", false, "apply the EXIF orientation before resizing")
	flags.Bool("no-tui", false, "print plain log lines instead of the progress view")
	flags.String("log-file", "", "write diagnostic logs to this file")
	flags.Bool("debug", false, "enable debug-level diagnostic logs")

	rootCmd.AddCommand(optimizeCmd)
}
