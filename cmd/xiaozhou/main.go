package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xiaozhou/internal/app"
	"xiaozhou/internal/client"
	"xiaozhou/internal/config"
	"xiaozhou/internal/logging"
	"xiaozhou/internal/persona"
	"xiaozhou/internal/storage"
	"xiaozhou/internal/ui"
)

var (
	version   = "0.1.0"
	cfgFile   string
	personaID string
	search    bool
	noSearch  bool
	logLevel  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xiaozhou",
		Short: "Terminal chat with AI personas",
		Long: `Xiaozhou is a terminal chat client with multiple AI personas backed by
the Gemini API. It keeps conversation history locally, streams replies as
they are generated, and can ground answers with live web search.`,
		RunE: runApp,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/xiaozhou/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&personaID, "persona", "", "persona to start with (default is the first in the catalog)")
	rootCmd.PersistentFlags().BoolVar(&search, "search", false, "enable web search grounding")
	rootCmd.PersistentFlags().BoolVar(&noSearch, "no-search", false, "disable web search grounding")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xiaozhou version %s\n", version)
		},
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runApp(cmd *cobra.Command, args []string) error {
	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Version = version

	if search {
		cfg.Chat.EnableSearch = true
	}
	if noSearch {
		cfg.Chat.EnableSearch = false
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	dataDir, err := config.DataDir()
	if err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}

	if err := logging.EnableFileLogging(dataDir, logging.ParseLevel(cfg.Logging.Level)); err != nil {
		// The app works without a log file; note it and move on.
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	defer logging.Close()

	mgr, err := storage.NewManager(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open data directory: %w", err)
	}

	application := app.New(cfg, client.New(cfg), mgr)
	if personaID != "" {
		application.SelectPersona(personaID)
	}

	watcher, err := storage.NewKeyWatcher(mgr, func(overrides []persona.KeyOverride) {
		application.ReloadKeyOverrides(overrides)
	})
	if err != nil {
		logging.Warn("key watcher unavailable", "error", err)
	} else {
		defer watcher.Stop()
	}

	if err := ui.Run(application, cfg, version); err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	application.Wait()
	return nil
}
