// Command pocketlog ships rotated hourly log files to S3.
//
// One invocation performs one full pass: scan the log root for finished
// artifacts, upload each to its deterministic key, delete the local copy
// on confirmed success. The agent is stateless and idempotent, so an
// external timer (systemd in the stock install) re-runs it on a fixed
// interval and thereby also retries anything that failed.
//
// Logging:
//   - Base logger is created here with output format and level
//   - Logger is passed to all components via dependency injection
//   - No global slog configuration (no slog.SetDefault)
//   - Components scope loggers with their own attributes
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"pocketlog/internal/config"
	"pocketlog/internal/scanner"
	"pocketlog/internal/uploader"
)

var version = "dev"

func main() {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:   "pocketlog",
		Short: "Hourly log file uploader",
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload finished hourly artifacts and retire them",
		RunE: func(cmd *cobra.Command, args []string) error {
			confPath, _ := cmd.Flags().GetString("config")

			logger, err := buildLogger(logLevel, logFormat)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			return runUpload(ctx, logger, confPath)
		},
	}
	uploadCmd.Flags().String("config", config.DefaultPath, "path to the settings file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	rootCmd.AddCommand(uploadCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runUpload(ctx context.Context, logger *slog.Logger, confPath string) error {
	cfg := config.Load(confPath, logger)
	if cfg.Bucket == "" {
		return fmt.Errorf("S3_BUCKET is not set in %s: %w", confPath, uploader.ErrNoBucket)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg)

	up, err := uploader.New(client, cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting upload pass",
		"root", cfg.Root, "bucket", cfg.Bucket, "prefix", cfg.Prefix, "min_age", cfg.MinAge)

	sc := scanner.New(cfg, nil, logger)
	n := up.Run(ctx, sc.Scan())

	fmt.Printf("Uploaded %d file(s).\n", n)
	return nil
}

// buildLogger creates the base logger from the CLI flags.
func buildLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %q", format)
	}
}
