package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"wedding-seating/internal/config"
	"wedding-seating/internal/storage"
)

var (
	cfg *config.Config
	log zerolog.Logger

	rootCmd = &cobra.Command{
		Use:   "seating",
		Short: "Plan and manage wedding seating",
		Long: `seating assigns guests to tables while keeping households together,
honoring must/must-not sit together rules and filling tables tightly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.LoadConfig(); err != nil {
				return err
			}
			log = newLogger(cfg.LogLevel)
			return nil
		},
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the seating HTTP API",
		RunE:  runServe,
	}
	botCmd = &cobra.Command{
		Use:   "bot",
		Short: "Run the WhatsApp bot with an interactive seating menu",
		Long:  `Connects to WhatsApp (showing a login QR code on first run), answers RSVP and seat questions, and offers a menu for seating tasks.`,
		RunE:  runBot,
	}
	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Print proposed seats for an event file without saving anything",
		RunE:  runPlan,
	}
	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Load an event file into the seating database",
		RunE:  runImport,
	}
	eventFile string
)

func init() {
	planCmd.Flags().StringVarP(&eventFile, "file", "f", "event.yaml", "event file (YAML)")
	importCmd.Flags().StringVarP(&eventFile, "file", "f", "event.yaml", "event file (YAML)")

	rootCmd.AddCommand(serveCmd, botCmd, planCmd, importCmd)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func openStorage() (*storage.Storage, error) {
	store, err := storage.NewStorage(cfg.DatabasePath, component("Storage"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}
