package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/yad2bot/leadscan/internal/config"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "leadscan" {
			t.Errorf("expected use 'leadscan', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{
			"run":     false,
			"crawl":   false,
			"extract": false,
			"cancel":  false,
			"version": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Use]; ok {
				want[sub.Use] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}

// TestRunParams tests the crawl-selection flag validation.
func TestRunParams(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()

	t.Run("defaults pass validation", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		mode, recency, city, pages, err := runParams(cmd, cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if mode != "rent" || recency != "all" || city != "" {
			t.Errorf("unexpected defaults: %s %s %q", mode, recency, city)
		}
		if pages != cfg.PageBudget {
			t.Errorf("expected the config page budget, got %d", pages)
		}
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("mode", "lease"); err != nil {
			t.Fatal(err)
		}
		if _, _, _, _, err := runParams(cmd, cfg); !errors.Is(err, config.ErrUnknownMode) {
			t.Errorf("expected ErrUnknownMode, got %v", err)
		}
	})

	t.Run("unknown recency is rejected", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.Flags().Set("recency", "fresh"); err != nil {
			t.Fatal(err)
		}
		if _, _, _, _, err := runParams(cmd, cfg); !errors.Is(err, config.ErrUnknownRecency) {
			t.Errorf("expected ErrUnknownRecency, got %v", err)
		}
	})
}

// TestVersionCmd tests the version command output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.Run(cmd, nil)

	if !strings.Contains(buf.String(), "leadscan version") {
		t.Errorf("unexpected version output: %s", buf.String())
	}
}
