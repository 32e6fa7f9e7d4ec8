package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cr-transcripts/pkg/config"
	"cr-transcripts/pkg/db"
	"cr-transcripts/pkg/logging"
	"cr-transcripts/pkg/replication"
	"cr-transcripts/pkg/transcriptservice"
)

// Version information (set at build time)
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "crtranscripts",
		Short:        "Download and simplify Critical Role transcripts",
		Long:         "Mirror the transcript pages listed in the online index and render each one as Markdown.",
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         runProcess,
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	replicateCmd := &cobra.Command{
		Use:   "replicate",
		Short: "Copy the transcript catalog from MongoDB into a SQL store",
		Args:  cobra.NoArgs,
		RunE:  runReplicate,
	}
	replicateCmd.Flags().String("to", db.DriverPostgres, "Target SQL store (postgres or supabase)")
	replicateCmd.Flags().Int("batch-size", 100, "Transcripts per insert transaction")
	rootCmd.AddCommand(replicateCmd)

	return rootCmd
}

// setup loads config and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()), nil
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, err := db.Open(ctx, cfg.StoreOptions())
	if err != nil {
		logger.Error().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to open store")
		return err
	}
	if store != nil {
		defer store.Close(ctx)
	}

	service, err := transcriptservice.New(logger, cfg, store)
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := service.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Transcript run failed")
		return err
	}

	logger.Info().
		Int("processed", result.Processed).
		Int("lines", result.Lines).
		Dur("duration", time.Since(start)).
		Msg("Done")
	return nil
}

func runReplicate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	to, _ := cmd.Flags().GetString("to")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	if to != db.DriverPostgres && to != db.DriverSupabase {
		err := fmt.Errorf("%w: %q is not a SQL store", db.ErrUnknownDriver, to)
		logger.Error().Err(err).Msg("Invalid replication target")
		return err
	}

	source, err := db.ConnectMongoStore(ctx, cfg.StoreOptions().Mongo)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to connect to MongoDB")
		return err
	}
	defer source.Close(ctx)

	targetOpts := cfg.StoreOptions()
	targetOpts.Driver = to
	opened, err := db.Open(ctx, targetOpts)
	if err != nil {
		logger.Error().Err(err).Str("driver", to).Msg("Failed to open target store")
		return err
	}
	defer opened.Close(ctx)

	target, ok := opened.(*db.SQLStore)
	if !ok {
		err := fmt.Errorf("%w: %s store has no database connection", db.ErrNotConnected, to)
		logger.Error().Err(err).Msg("Invalid replication target")
		return err
	}

	replicator, err := replication.NewReplicator(replication.Config{
		Source:    source,
		Target:    target,
		BatchSize: batchSize,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	stats, err := replicator.Replicate(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Replication failed")
		return err
	}
	logger.Info().Int("processed", stats.Processed).Int("inserted", stats.Inserted).Msg("Done")
	return nil
}
