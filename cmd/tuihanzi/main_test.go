package main

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuihanzi/internal/catalog"
	"github.com/verte-zerg/tuihanzi/internal/model"
)

func validConfig() model.Config {
	return model.Config{
		Padding:     30,
		Supersample: 4,
		GuideURL:    "https://example.com",
		CacheSize:   16,
	}
}

func TestValidateConfig(t *testing.T) {
	if err := validateConfig(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []func(*model.Config){
		func(c *model.Config) { c.Padding = -1 },
		func(c *model.Config) { c.Padding = 210 },
		func(c *model.Config) { c.Supersample = 0 },
		func(c *model.Config) { c.CacheSize = 0 },
		func(c *model.Config) { c.GuideURL = " " },
	}
	for i, mutate := range cases {
		cfg := validConfig()
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	cmd := &cobra.Command{}
	var level string
	var supersample int
	cmd.Flags().StringVar(&level, "level", "", "")
	cmd.Flags().IntVar(&supersample, "supersample", 4, "")
	if err := cmd.Flags().Set("level", "grade02"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	fromFile := "grade05"
	fileSS := 2
	applyStringConfig(cmd, "level", &level, &fromFile)
	applyIntConfig(cmd, "supersample", &supersample, &fileSS)
	if level != "grade02" {
		t.Fatalf("flag value overridden: %s", level)
	}
	if supersample != 2 {
		t.Fatalf("expected file value, got %d", supersample)
	}
	applyIntConfig(cmd, "supersample", &supersample, nil)
	if supersample != 2 {
		t.Fatalf("nil config value changed target")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFetchTargets(t *testing.T) {
	cat := catalog.New(map[string][]string{
		"grade01": {"一", "二"},
		"grade02": {"二", "三"},
	})
	t.Cleanup(func() {
		fetchAll = false
		fetchLevel = ""
	})

	chars, err := fetchTargets(cat, []string{"你好你"})
	if err != nil || strings.Join(chars, "") != "你好" {
		t.Fatalf("unexpected args targets %v, %v", chars, err)
	}

	fetchAll = true
	chars, err = fetchTargets(cat, nil)
	if err != nil || strings.Join(chars, "") != "一二三" {
		t.Fatalf("unexpected --all targets %v, %v", chars, err)
	}

	fetchAll = false
	fetchLevel = "grade09"
	if _, err := fetchTargets(cat, nil); err == nil {
		t.Fatalf("expected unknown level error")
	}

	fetchLevel = ""
	if _, err := fetchTargets(cat, nil); err == nil {
		t.Fatalf("expected error without targets")
	}
}

func TestRenderPaddingUsesConfig(t *testing.T) {
	if got := renderPadding(nil, 420); got != 30 {
		t.Fatalf("default padding = %v, want 30", got)
	}
	configured := 42.0
	if got := renderPadding(&configured, 210); got != 21 {
		t.Fatalf("configured padding = %v, want 21", got)
	}
	negative := -5.0
	if got := renderPadding(&negative, 840); got != 60 {
		t.Fatalf("negative padding = %v, want default 60", got)
	}
}

func TestDefaultConfigTemplateMentionsSections(t *testing.T) {
	tpl := defaultConfigTemplate()
	for _, want := range []string{"[practice]", "[guide]", "[catalog]", "[speech]", "[log]", "padding = 30"} {
		if !strings.Contains(tpl, want) {
			t.Fatalf("template missing %q", want)
		}
	}
}
