package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuihanzi/internal/catalog"
	"github.com/verte-zerg/tuihanzi/internal/config"
	"github.com/verte-zerg/tuihanzi/internal/coords"
	"github.com/verte-zerg/tuihanzi/internal/guide"
	"github.com/verte-zerg/tuihanzi/internal/model"
	"github.com/verte-zerg/tuihanzi/internal/render"
	"github.com/verte-zerg/tuihanzi/internal/session"
	"github.com/verte-zerg/tuihanzi/internal/stats"
	"github.com/verte-zerg/tuihanzi/internal/statsui"
	"github.com/verte-zerg/tuihanzi/internal/store"
)

const (
	defaultTrendWindow = 10
	defaultRenderSize  = 420
)

var (
	statsLevel  string
	statsSince  string
	statsLast   int
	statsWindow int
	statsPlain  bool

	fetchLevel string
	fetchAll   bool

	renderStrokes int
	renderSize    int
	renderOut     string
)

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List character levels",
		Args:  cobra.NoArgs,
		RunE:  runLevelsCmd,
	}
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	cat, err := catalogFromConfig()
	if err != nil {
		return err
	}
	levels := cat.Levels()
	if len(levels) == 0 {
		return fmt.Errorf("catalog has no levels")
	}
	for _, level := range levels {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", level, catalog.LevelLabel(level), cat.Len(level)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// catalogFromConfig loads the catalog named by the config file or environment.
func catalogFromConfig() (*catalog.Catalog, error) {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	path := ""
	if fileCfg.Catalog.Path != nil {
		path = *fileCfg.Catalog.Path
	}
	return loadCatalog(path)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show practice stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsLevel, "level", "", "level filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N characters")
	cmd.Flags().IntVar(&statsWindow, "window", defaultTrendWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the stats UI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if statsWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}

	cfg := model.StatsConfig{
		Level: statsLevel,
		Since: sinceTime,
		Last:  statsLast,
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

	if statsPlain {
		report, err := stats.BuildReport(cmd.Context(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		if len(report.Records) == 0 {
			logErrln("No practice records yet.")
			return nil
		}
		if err := report.Write(cmd.OutOrStdout(), statsWindow, 0, false); err != nil {
			return fmt.Errorf("failed to write stats: %w", err)
		}
		return nil
	}

	cat, err := catalogFromConfig()
	if err != nil {
		return err
	}
	m := statsui.NewModel(st, cfg, cat.Levels(), statsWindow)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [characters]",
		Short: "Download stroke data into the local cache",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFetchCmd,
	}
	cmd.Flags().StringVar(&fetchLevel, "level", "", "level to download")
	cmd.Flags().BoolVar(&fetchAll, "all", false, "download every level")
	return cmd
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	baseURL := guide.DefaultBaseURL
	if fileCfg.Guide.BaseURL != nil {
		baseURL = *fileCfg.Guide.BaseURL
	}
	catalogPath := ""
	if fileCfg.Catalog.Path != nil {
		catalogPath = *fileCfg.Catalog.Path
	}
	cat, err := loadCatalog(catalogPath)
	if err != nil {
		return err
	}

	chars, err := fetchTargets(cat, args)
	if err != nil {
		return err
	}

	provider := guide.NewHTTPProvider(baseURL, config.DefaultGuideCacheDir())
	ctx := cmd.Context()
	var fetched, cached, failed int
	for _, char := range chars {
		if provider.Cached(char) {
			cached++
			continue
		}
		if _, err := provider.Load(ctx, char); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logErrf("Skipping %s: %v\n", char, err)
			failed++
			continue
		}
		fetched++
	}
	logErrf("Fetched %d, already cached %d, failed %d\n", fetched, cached, failed)
	if failed > 0 && fetched == 0 && cached == 0 {
		return fmt.Errorf("failed to fetch stroke data")
	}
	return nil
}

// fetchTargets resolves the characters named on the command line or by
// --level/--all, without duplicates.
func fetchTargets(cat *catalog.Catalog, args []string) ([]string, error) {
	var chars []string
	switch {
	case len(args) > 0:
		for _, r := range args[0] {
			chars = append(chars, string(r))
		}
	case fetchAll:
		for _, level := range cat.Levels() {
			chars = append(chars, cat.CharactersFor(level)...)
		}
	case fetchLevel != "":
		if !cat.Has(fetchLevel) {
			return nil, fmt.Errorf("unknown level %q (see: tuihanzi levels)", fetchLevel)
		}
		chars = cat.CharactersFor(fetchLevel)
	default:
		return nil, fmt.Errorf("pass characters, --level, or --all")
	}
	seen := make(map[string]struct{}, len(chars))
	unique := chars[:0:0]
	for _, c := range chars {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		unique = append(unique, c)
	}
	if len(unique) == 0 {
		return nil, fmt.Errorf("no characters to fetch")
	}
	return unique, nil
}

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <character>",
		Short: "Render a character's stroke guide to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  runRenderCmd,
	}
	cmd.Flags().IntVar(&renderStrokes, "strokes", 0, "number of strokes to mark as written")
	cmd.Flags().IntVar(&renderSize, "size", defaultRenderSize, "image size in pixels")
	cmd.Flags().StringVarP(&renderOut, "output", "o", "", "output file (default: <character>.png)")
	return cmd
}

func runRenderCmd(cmd *cobra.Command, args []string) error {
	char := args[0]
	if renderSize <= 0 {
		return fmt.Errorf("--size must be > 0")
	}
	if renderStrokes < 0 {
		return fmt.Errorf("--strokes must be >= 0")
	}
	fileCfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	baseURL := guide.DefaultBaseURL
	if fileCfg.Guide.BaseURL != nil {
		baseURL = *fileCfg.Guide.BaseURL
	}
	provider := guide.NewHTTPProvider(baseURL, config.DefaultGuideCacheDir())
	if fileCfg.Guide.Offline != nil {
		provider.Offline = *fileCfg.Guide.Offline
	}
	ctx := cmd.Context()
	path, err := provider.Load(ctx, char)
	if err != nil {
		return fmt.Errorf("failed to load stroke data: %w", err)
	}

	pipe, err := render.New(renderSize, renderSize, render.DefaultPalette())
	if err != nil {
		return fmt.Errorf("failed to create surface: %w", err)
	}
	padding := renderPadding(fileCfg.Practice.Padding, renderSize)
	tr := coords.Compute(float64(renderSize), float64(renderSize), coords.HanziBounds, padding)
	frame := render.Frame{
		State: model.PracticeState{
			Active:         model.CharacterEntry{Character: char},
			CompletedCount: min(renderStrokes, path.Len()),
			TotalStrokes:   path.Len(),
		},
		Guide:     path,
		Transform: tr,
	}
	if err := pipe.Redraw(frame); err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	out := renderOut
	if out == "" {
		out = char + ".png"
	}
	if err := pipe.SavePNG(out); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	logErrf("Wrote %s (%d/%d strokes)\n", out, frame.State.CompletedCount, path.Len())
	return nil
}

// renderPadding scales the configured practice padding to an image of size
// pixels, so exported PNGs match the practice canvas.
func renderPadding(configured *float64, size int) float64 {
	padding := float64(session.DefaultPadding)
	if configured != nil && *configured >= 0 {
		padding = *configured
	}
	return padding * float64(size) / session.ReferenceSize
}
