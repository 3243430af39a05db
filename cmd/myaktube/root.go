// ABOUTME: Root command wiring config, logging, storage and the library service.
// ABOUTME: The store opens lazily on first use and is closed when the command finishes.

package main

import (
	"github.com/harper/myaktube/internal/config"
	"github.com/harper/myaktube/internal/library"
	"github.com/harper/myaktube/internal/logging"
	"github.com/harper/myaktube/internal/store"
	"github.com/harper/myaktube/internal/store/kv"
	"github.com/harper/myaktube/internal/store/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfg         *config.Config
	logger      *logrus.Logger
	storeHandle *store.Handle
	lib         *library.Service
)

var rootCmd = &cobra.Command{
	Use:          "myaktube",
	Short:        "Offline audio and video library",
	Long:         `Keep audio and video files and playlists in a local library and play them without a network.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return openApp(cmd)
	},
}

func openApp(cmd *cobra.Command) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")

	loaded, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-dir") {
		loaded.DataDir, _ = cmd.Flags().GetString("data-dir")
	}
	if cmd.Flags().Changed("backend") {
		loaded.Backend, _ = cmd.Flags().GetString("backend")
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	log, err := logging.New(logging.Options{
		Level:   loaded.LogLevel,
		File:    loaded.LogFile,
		Verbose: verbose,
		Output:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	cfg = loaded
	logger = log
	storeHandle = store.NewHandle(opener(cfg, log))
	lib = library.New(storeHandle,
		library.WithLogger(log),
		library.WithMaxUploadBytes(cfg.MaxUploadBytes),
	)
	log.WithFields(logrus.Fields{"backend": cfg.Backend, "path": cfg.StorePath()}).Debug("library configured")
	return nil
}

func opener(cfg *config.Config, log *logrus.Logger) store.Opener {
	return func() (store.Store, error) {
		if cfg.Backend == config.BackendSQLite {
			s, err := sqlite.Open(cfg.StorePath())
			if err != nil {
				return nil, err
			}
			return s, nil
		}
		s, err := kv.Open(cfg.StorePath(),
			kv.WithSyncWrites(cfg.SyncWrites),
			kv.WithLogger(log),
		)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func closeApp() {
	if storeHandle != nil {
		if err := storeHandle.Close(); err != nil && logger != nil {
			logger.WithError(err).Warn("close store")
		}
		storeHandle = nil
	}
	if logger != nil {
		_ = logging.Close(logger)
		logger = nil
	}
	lib = nil
}

// Execute runs the root command and releases the store afterwards.
func Execute() error {
	defer closeApp()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default $XDG_CONFIG_HOME/myaktube/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "library data directory")
	rootCmd.PersistentFlags().String("backend", "", "storage backend: kv or sqlite")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
}
