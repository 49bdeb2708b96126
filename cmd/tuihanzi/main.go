// Package main provides the CLI entrypoint for tuihanzi.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuihanzi/internal/catalog"
	"github.com/verte-zerg/tuihanzi/internal/config"
	"github.com/verte-zerg/tuihanzi/internal/demo"
	"github.com/verte-zerg/tuihanzi/internal/guide"
	"github.com/verte-zerg/tuihanzi/internal/model"
	"github.com/verte-zerg/tuihanzi/internal/phonetic"
	"github.com/verte-zerg/tuihanzi/internal/progress"
	"github.com/verte-zerg/tuihanzi/internal/render"
	"github.com/verte-zerg/tuihanzi/internal/session"
	"github.com/verte-zerg/tuihanzi/internal/speech"
	"github.com/verte-zerg/tuihanzi/internal/store"
	"github.com/verte-zerg/tuihanzi/internal/tui"
)

const (
	defaultSupersample = 4
	defaultLogLevel    = "info"
	demoSurfaceSize    = 96
)

var (
	practiceLevel       string
	practicePadding     float64
	practiceSupersample int
	practiceGuideURL    string
	practiceCacheSize   int
	practiceOffline     bool
	practiceCatalog     string
	practiceSpeechCmd   string
	practiceLogLevel    string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuihanzi",
		Short:         "TUI Chinese character stroke practice",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceLevel, "level", "", "level to practice (default: saved position)")
	rootCmd.Flags().Float64Var(&practicePadding, "padding", session.DefaultPadding, "canvas padding at the reference size")
	rootCmd.Flags().IntVar(&practiceSupersample, "supersample", defaultSupersample, "surface pixels per terminal column")
	rootCmd.Flags().StringVar(&practiceGuideURL, "guide-url", guide.DefaultBaseURL, "stroke data base URL")
	rootCmd.Flags().IntVar(&practiceCacheSize, "cache-size", guide.DefaultCacheSize, "characters kept in memory")
	rootCmd.Flags().BoolVar(&practiceOffline, "offline", false, "use only cached stroke data")
	rootCmd.Flags().StringVar(&practiceCatalog, "catalog", "", "character list JSON (default: built-in)")
	rootCmd.Flags().StringVar(&practiceSpeechCmd, "speech-command", "", "text-to-speech command (default: auto-detect)")
	rootCmd.Flags().StringVar(&practiceLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newFetchCmd())
	rootCmd.AddCommand(newRenderCmd())

	return rootCmd
}

// loadPracticeConfig layers the config file and environment under any flags
// set explicitly on cmd.
func loadPracticeConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "level", &practiceLevel, fileCfg.Practice.Level)
	applyFloatConfig(cmd, "padding", &practicePadding, fileCfg.Practice.Padding)
	applyIntConfig(cmd, "supersample", &practiceSupersample, fileCfg.Practice.Supersample)
	applyStringConfig(cmd, "guide-url", &practiceGuideURL, fileCfg.Guide.BaseURL)
	applyIntConfig(cmd, "cache-size", &practiceCacheSize, fileCfg.Guide.CacheSize)
	applyBoolConfig(cmd, "offline", &practiceOffline, fileCfg.Guide.Offline)
	applyStringConfig(cmd, "catalog", &practiceCatalog, fileCfg.Catalog.Path)
	applyStringConfig(cmd, "speech-command", &practiceSpeechCmd, fileCfg.Speech.Command)
	applyStringConfig(cmd, "log-level", &practiceLogLevel, fileCfg.Log.Level)

	cfg := model.Config{
		Level:       practiceLevel,
		Padding:     practicePadding,
		Supersample: practiceSupersample,
		GuideURL:    practiceGuideURL,
		CacheSize:   practiceCacheSize,
		Offline:     practiceOffline,
		CatalogPath: practiceCatalog,
		SpeechCmd:   practiceSpeechCmd,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadPracticeConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog := openLogger(practiceLogLevel)
	defer closeLog()

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	if cfg.Level != "" && !cat.Has(cfg.Level) {
		return fmt.Errorf("unknown level %q (see: tuihanzi levels)", cfg.Level)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	provider, err := newGuideProvider(cfg, logger)
	if err != nil {
		return err
	}

	pipe, err := render.New(cfg.Supersample, 2*cfg.Supersample, render.DefaultPalette())
	if err != nil {
		return fmt.Errorf("failed to create canvas: %w", err)
	}
	canvas := tui.NewCanvas(pipe, cfg.Supersample)

	player, err := demo.NewPlayer(provider, demoSurfaceSize, render.DefaultPalette())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	speaker := speech.New(cfg.SpeechCmd)
	if !speaker.Available() {
		logger.Info("no text-to-speech command found")
	}

	sess := session.New(session.Options{
		Catalog:   cat,
		Guides:    guide.NewStore(provider),
		Progress:  progress.NewStore(st, logger),
		Renderer:  canvas,
		Animator:  player,
		Speaker:   speaker,
		Phonetic:  phonetic.New(),
		Recorder:  st,
		Padding:   cfg.Padding,
		SessionID: uuid.NewString(),
		Logger:    logger,
		Context:   ctx,
	})
	sess.Restore(ctx)
	if cfg.Level != "" && sess.State().Active.Level != cfg.Level {
		sess.SetLevel(cfg.Level)
	}

	m := tui.NewModel(ctx, sess, canvas, player, tui.Options{Logger: logger})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return cat, nil
}

func newGuideProvider(cfg model.Config, logger *slog.Logger) (guide.Provider, error) {
	httpProvider := guide.NewHTTPProvider(cfg.GuideURL, config.DefaultGuideCacheDir())
	httpProvider.Offline = cfg.Offline
	httpProvider.Logger = logger
	cached, err := guide.NewCachedProvider(httpProvider, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

// openLogger writes to the log file since the TUI owns the terminal.
func openLogger(level string) (*slog.Logger, func()) {
	path := config.DefaultLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return slog.New(slog.DiscardHandler), func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return slog.New(slog.DiscardHandler), func() {}
	}
	logger := newLogger(f, level)
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close of the log file.
			_ = cerr
		}
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(level)}))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuihanzi configuration
# Uncomment a value to enable it. TUIHANZI_* environment variables override
# config values and CLI flags override both.

[practice]
# level = "grade01"       # Level to start on (default: saved position)
# padding = %d            # Canvas padding at the reference size
# supersample = %d          # Surface pixels per terminal column

[guide]
# base-url = %q
# cache-size = %d         # Characters kept in memory
# offline = false          # Use only cached stroke data

[catalog]
# path = "/path/to/characters.json"

[speech]
# command = "espeak-ng -v cmn"

[log]
# level = %q
`,
		session.DefaultPadding,
		defaultSupersample,
		guide.DefaultBaseURL,
		guide.DefaultCacheSize,
		defaultLogLevel,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Padding < 0 {
		return fmt.Errorf("--padding must be >= 0")
	}
	if cfg.Padding*2 >= session.ReferenceSize {
		return fmt.Errorf("--padding must be less than %d", session.ReferenceSize/2)
	}
	if cfg.Supersample < 1 || cfg.Supersample > 8 {
		return fmt.Errorf("--supersample must be between 1 and 8")
	}
	if cfg.CacheSize <= 0 {
		return fmt.Errorf("--cache-size must be > 0")
	}
	if strings.TrimSpace(cfg.GuideURL) == "" {
		return fmt.Errorf("--guide-url must not be empty")
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
