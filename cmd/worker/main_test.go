package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/archetype-mailer/internal/config"
)

func TestRootCmdFlagDefaults(t *testing.T) {
	cmd := newRootCmd()
	continuous, err := cmd.Flags().GetBool("continuous")
	if err != nil || continuous {
		t.Fatalf("continuous default = %v (%v)", continuous, err)
	}
	interval, err := cmd.Flags().GetInt("interval")
	if err != nil || interval != 60 {
		t.Fatalf("interval default = %d (%v)", interval, err)
	}
	if cmd.Flags().ShorthandLookup("c") == nil || cmd.Flags().ShorthandLookup("i") == nil {
		t.Fatalf("expected -c and -i shorthands")
	}
}

func TestRootCmdRejectsNonPositiveInterval(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--interval", "0"})
	cmd.SetOut(&strings.Builder{})
	cmd.SetErr(&strings.Builder{})
	if err := cmd.Execute(); err == nil || !strings.Contains(err.Error(), "interval") {
		t.Fatalf("expected interval error, got %v", err)
	}
}

func TestRunReportsAllMissingConfiguration(t *testing.T) {
	err := run(context.Background(), config.Config{
		ClassifierProvider: config.ProviderOpenAI,
		RecordStoreBackend: config.BackendAirtable,
	}, runFlags{interval: 60})

	var missing *config.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingError, got %v", err)
	}
	if len(missing.Keys) < 5 {
		t.Fatalf("expected every missing key listed, got %v", missing.Keys)
	}
}
