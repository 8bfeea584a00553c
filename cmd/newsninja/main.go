// NewsNinja turns topics into a spoken news briefing: it aggregates news
// headlines and Reddit discussions, writes a broadcast script with Gemini and
// renders it to MP3.
//
// Usage:
//
//	newsninja serve              # HTTP API on :1234
//	newsninja serve --fallback   # model-free API with /health
//	newsninja generate --topics "AI,climate" --source both --out brief.mp3
//	newsninja sweep              # one retention pass over old audio
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/newsninja/internal/api"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/pipeline"
	"github.com/RobinCoderZhao/newsninja/internal/newsninja/scheduler"
)

var version = "dev"

type globalFlags struct {
	configPath string
	envFile    string
}

func main() {
	var gf globalFlags

	rootCmd := &cobra.Command{
		Use:           "newsninja",
		Short:         "Topic news briefings as audio",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&gf.configPath, "config", "c", "newsninja.yaml", "config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&gf.envFile, "env-file", ".env", "dotenv file with API keys")

	rootCmd.AddCommand(serveCmd(&gf))
	rootCmd.AddCommand(generateCmd(&gf))
	rootCmd.AddCommand(sweepCmd(&gf))
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCmd(gf *globalFlags) *cobra.Command {
	var (
		addr     string
		fallback bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), gf.configPath, gf.envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("fallback") {
				a.cfg.Server.Fallback = fallback
			}
			return runServer(a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":1234", "listen address")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "serve the model-free fallback pipeline")
	return cmd
}

func runServer(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(a.logger)
	sched.Add(scheduler.Job{Name: "audio-retention", Fn: func(ctx context.Context) error {
		_, err := a.sweeper.Sweep(ctx)
		return err
	}})
	go sched.Start(ctx, a.cfg.Audio.SweepInterval.Std())
	defer sched.Stop()

	server := api.NewServer(a.pipeline, api.Options{
		Fallback:    a.cfg.Server.Fallback,
		AllowOrigin: a.cfg.Server.AllowOrigin,
		Logger:      a.logger,
	})
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting NewsNinja API", "addr", srv.Addr, "fallback", a.cfg.Server.Fallback)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func generateCmd(gf *globalFlags) *cobra.Command {
	var (
		topics   []string
		source   string
		out      string
		fallback bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one briefing and write the MP3",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), gf.configPath, gf.envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			req := pipeline.Request{Topics: topics, SourceType: pipeline.SourceType(strings.ToLower(source))}
			ctx := context.Background()
			var res *pipeline.Result
			if fallback {
				res, err = a.pipeline.GenerateFallback(ctx, req)
			} else {
				res, err = a.pipeline.Generate(ctx, req)
			}
			if err != nil {
				return err
			}

			path := res.Artifact.Path
			if out != "" {
				if err := os.WriteFile(out, res.Audio, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				path = out
			}
			fmt.Printf("Briefing written to %s (%d bytes, script: %s, audio: %s)\n",
				path, len(res.Audio), res.Script.Origin, res.Artifact.Provider)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&topics, "topics", "t", nil, "comma-separated topics (required)")
	cmd.Flags().StringVarP(&source, "source", "s", string(pipeline.SourceBoth), "news, reddit or both")
	cmd.Flags().StringVarP(&out, "out", "o", "", "copy the MP3 to this path")
	cmd.Flags().BoolVar(&fallback, "fallback", false, "skip aggregation and models, use the free TTS only")
	_ = cmd.MarkFlagRequired("topics")
	return cmd
}

func sweepCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete audio older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), gf.configPath, gf.envFile)
			if err != nil {
				return err
			}
			defer a.Close()

			rep, err := a.sweeper.Sweep(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d files (%d orphans, %d already gone, %d failed), freed %d bytes\n",
				rep.Removed+rep.Orphans, rep.Orphans, rep.Missing, rep.Failed, rep.Bytes)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newsninja %s\n", version)
		},
	}
}
