package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"chunkforge/internal/app"
	"chunkforge/internal/chunker"
	"chunkforge/internal/config"
	"chunkforge/internal/logger"
	"chunkforge/internal/metrics"
	"chunkforge/internal/source"
)

// flagEnv maps command-line flags onto the environment variables they
// override.
var flagEnv = map[string]string{
	"chunk-size":       "CHUNK_SIZE",
	"chunk-overlap":    "CHUNK_OVERLAP",
	"split-by-headers": "SPLIT_BY_HEADERS",
	"method":           "CHUNK_METHOD",
	"data":             "DATA_DIR",
	"output":           "OUTPUT",
	"report":           "REPORT_FILE",
	"outline":          "PREVIEW_OUTLINE",
	"log-level":        "LOG_LEVEL",
	"metrics-addr":     "METRICS_ADDR",
}

type runtime struct {
	cfg *config.Config
	log zerolog.Logger
	app *app.App
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rt := &runtime{}

	root := &cobra.Command{
		Use:           "chunkforge",
		Short:         "Split documents into bounded, overlapping chunks",
		Long:          "Without arguments chunkforge reads document paths from stdin and prints a chunk preview for each.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return rt.init(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return rt.serveMetrics(cmd.Context(), func(ctx context.Context) error {
				return rt.app.Run(ctx, cmd.InOrStdin())
			})
		},
	}

	flags := root.PersistentFlags()
	flags.Int("chunk-size", chunker.DefaultChunkSize, "target/maximum chunk length in characters")
	flags.Int("chunk-overlap", chunker.DefaultChunkOverlap, "characters shared by consecutive windows")
	flags.Bool("split-by-headers", true, "split markdown documents at headers")
	flags.String("method", chunker.MethodAuto, "chunking method: auto, markdown or text")
	flags.String("data", "", "directory relative document paths are resolved against")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address")

	root.AddCommand(newPreviewCmd(rt), newGenerateCmd(rt), newOutlineCmd(rt))
	return root
}

func newPreviewCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <document>...",
		Short: "Show the first chunks of the first documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := rt.app.Preview(cmd.Context(), args)
			if err != nil {
				return err
			}
			if err := app.RenderPreview(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if rt.cfg.ReportFile != "" {
				if err := app.WritePreviewReport(report, rt.cfg.ReportFile); err != nil {
					return fmt.Errorf("failed to save report: %w", err)
				}
				rt.log.Info().Str("path", rt.cfg.ReportFile).Msg("Report saved")
			}
			return nil
		},
	}
	cmd.Flags().String("report", "", "also save the preview as a markdown file")
	cmd.Flags().Bool("outline", true, "include the markdown outline of each document")
	return cmd
}

func newGenerateCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <document>...",
		Short: "Segment every document and emit one JSON record per chunk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.serveMetrics(cmd.Context(), func(ctx context.Context) error {
				var w io.Writer = cmd.OutOrStdout()
				if rt.cfg.Output != "" {
					f, err := os.Create(rt.cfg.Output)
					if err != nil {
						return fmt.Errorf("failed to create output: %w", err)
					}
					defer f.Close()
					w = f
				}

				report, err := rt.app.Generate(ctx, args, w)
				if err != nil {
					return err
				}
				for _, doc := range report.Documents {
					if doc.Err != nil {
						rt.log.Warn().Err(doc.Err).Str("document", doc.DocumentID).Msg("Document skipped")
					}
				}
				rt.log.Info().
					Str("run_id", report.RunID).
					Int("chunks", report.TotalChunks).
					Int("analyzed", report.SuccessCount).
					Int("errors", report.ErrorCount).
					Msg("Summary")
				return nil
			})
		},
	}
	cmd.Flags().String("output", "", "write records to this file instead of stdout")
	return cmd
}

func newOutlineCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "outline <document>",
		Short: "Print the markdown structure of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := source.NewFileProvider(rt.cfg.DataDir).Content(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			s := chunker.Outline(chunker.Normalize(text))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d characters, %d paragraphs\n", args[0], s.TotalSize, s.TotalParagraphs)
			if !s.HasHeadings() {
				fmt.Fprintln(out, "  (no headings)")
			}
			for _, h := range s.Headings {
				fmt.Fprintf(out, "  - %s\n", h)
			}
			return nil
		},
	}
}

// init resolves configuration: flags override the environment, which
// overrides .env, which overrides the defaults.
func (rt *runtime) init(cmd *cobra.Command) error {
	var setErr error
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := flagEnv[f.Name]; ok && setErr == nil {
			setErr = os.Setenv(key, f.Value.String())
		}
	})
	if setErr != nil {
		return setErr
	}

	// .env is optional
	_ = godotenv.Load()

	cfg := &config.Config{}
	if err := config.Init(cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	rt.cfg = cfg
	rt.log = logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	a, err := app.New(cfg,
		app.WithLogger(logger.Component(rt.log, "app")),
		app.WithMetrics(metrics.New()),
		app.WithOutput(cmd.OutOrStdout()),
	)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	rt.app = a

	rt.log.Debug().
		Int("chunk_size", cfg.ChunkSize).
		Int("chunk_overlap", cfg.ChunkOverlap).
		Bool("split_by_headers", cfg.SplitByHeaders).
		Str("method", cfg.ChunkMethod).
		Int("concurrency", cfg.MaxConcurrency).
		Msg("Configuration loaded")
	return nil
}

// serveMetrics runs fn while exposing metrics on METRICS_ADDR, if set.
func (rt *runtime) serveMetrics(ctx context.Context, fn func(context.Context) error) error {
	if rt.cfg.MetricsAddr == "" {
		return fn(ctx)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.app.Metrics().Handler())
	srv := &http.Server{Addr: rt.cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		rt.log.Info().Str("addr", rt.cfg.MetricsAddr).Msg("Serving metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return fn(ctx)
}
