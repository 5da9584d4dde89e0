// DocManager is a terminal workspace for chatting with an AI assistant
// about uploaded documents. Run without arguments for the interactive
// UI, or use the subcommands for headless access to the backend.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docmanager/cmd/docmanager/app"
	"docmanager/cmd/docmanager/ui"
	"docmanager/internal/api"
	"docmanager/internal/config"
	"docmanager/internal/logging"
	"docmanager/internal/watch"
	"docmanager/internal/workspace"
)

var (
	// Global flags
	configPath string
	baseURL    string
	verbose    bool
	sessionID  string

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docmanager",
	Short: "DocManager - document workspace with an AI assistant",
	Long: `DocManager is a workspace client for a document-chat backend.

Upload documents, browse them in a split view, and converse with an AI
assistant that cites the documents it answered from. All intelligence
lives in the backend; this client keeps your workspace state consistent.

Run without arguments to start the interactive workspace.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if baseURL != "" {
			cfg.APIBaseURL = baseURL
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}

		// The interactive UI owns the terminal; route its logs to a file.
		opts := logging.Options{Level: cfg.Logging.Level, Dir: cfg.Logging.Dir}
		if cmd.CalledAs() == "docmanager" && opts.Dir == "" {
			opts.Dir = filepath.Join(filepath.Dir(configPath), "logs")
		}
		logger, err = logging.New(opts)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWorkspace()
	},
}

func runWorkspace() error {
	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger.Named("api"))
	ctrl := workspace.New(client, logger)

	if cfg.WatchDir != "" {
		watcher := watch.New(cfg.WatchDir, ctrl.Uploads(), logger.Named("watch"))
		if err := watcher.Start(); err != nil {
			logger.Warn("watch folder disabled", zap.String("dir", cfg.WatchDir), zap.Error(err))
		} else {
			defer watcher.Stop()
		}
	}

	model := app.New(ctrl, ui.ThemeByName(cfg.Theme))
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload one or more files to the backend",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(4)
		for _, path := range args {
			g.Go(func() error {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				start := time.Now()
				if err := client.Upload(ctx, filepath.Base(path), f); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				logger.Info("uploaded",
					zap.String("file", path),
					zap.Duration("elapsed", time.Since(start)))
				fmt.Printf("uploaded %s\n", path)
				return nil
			})
		}
		return g.Wait()
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the assistant a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return fmt.Errorf("question must not be blank")
		}
		client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)

		answer, err := client.Ask(cmd.Context(), sessionID, question)
		if err != nil {
			return err
		}
		fmt.Println(answer.Text)
		if len(answer.Sources) > 0 {
			fmt.Println("\nSources:")
			for _, s := range answer.Sources {
				fmt.Printf("  - %s\n", s)
			}
		}
		return nil
	},
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List the files the backend knows about",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)
		names, err := client.ListFiles(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Println("no files on server")
			return nil
		}
		for _, n := range names {
			kind := workspace.Classify(n)
			fmt.Printf("%-16s %s\n", kind.Icon, n)
		}
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List server-known chat sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)
		ids, err := client.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("no sessions on server")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to the config file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "api-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	askCmd.Flags().StringVar(&sessionID, "session", workspace.DefaultSessionID, "session id to ask under")

	rootCmd.AddCommand(uploadCmd, askCmd, filesCmd, sessionsCmd)
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
