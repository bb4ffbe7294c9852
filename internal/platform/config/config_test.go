package config

import (
	"os"
	"testing"
	"time"
)

const (
	testEnvPostgresDSN = "POSTGRES_DSN"
	testPostgresDSN    = "postgres://localhost/test"
	testErrLoad        = "Load() error = %v"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()

	t.Setenv(testEnvPostgresDSN, testPostgresDSN)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvPostgresDSN)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing POSTGRES_DSN")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv = %q, want %q", cfg.AppEnv, "local")
	}

	if cfg.MatchMode != "AND" {
		t.Errorf("MatchMode = %q, want AND", cfg.MatchMode)
	}

	if cfg.BackfillTarget != 20 {
		t.Errorf("BackfillTarget = %d, want 20", cfg.BackfillTarget)
	}

	if cfg.BackfillOversample != 10 {
		t.Errorf("BackfillOversample = %d, want 10", cfg.BackfillOversample)
	}

	if cfg.BatchTriggerSize != 5 {
		t.Errorf("BatchTriggerSize = %d, want 5", cfg.BatchTriggerSize)
	}

	if cfg.StreamStopMode != StopModeNone {
		t.Errorf("StreamStopMode = %q, want %q", cfg.StreamStopMode, StopModeNone)
	}

	if cfg.PollInterval != 60*time.Second {
		t.Errorf("PollInterval = %v, want 60s", cfg.PollInterval)
	}

	if cfg.AspectExtractor != AspectExtractorLexicon {
		t.Errorf("AspectExtractor = %q, want lexicon", cfg.AspectExtractor)
	}

	if len(cfg.KeywordTerms) == 0 || len(cfg.ProductTerms) == 0 {
		t.Error("expected non-empty default term lists")
	}
}

func TestLoad_InvalidStopMode(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("STREAM_STOP_MODE", "forever")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid STREAM_STOP_MODE")
	}
}

func TestLoad_InvalidMatchMode(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("MATCH_MODE", "XOR")

	if _, err := Load(); err == nil {
		t.Error("expected error for invalid MATCH_MODE")
	}
}

func TestLoad_TermListsParsed(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("KEYWORD_TERMS", "battery,camera")
	t.Setenv("PRODUCT_TERMS", "pixel")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if len(cfg.KeywordTerms) != 2 || cfg.KeywordTerms[0] != "battery" {
		t.Errorf("KeywordTerms = %v, want [battery camera]", cfg.KeywordTerms)
	}

	if len(cfg.ProductTerms) != 1 || cfg.ProductTerms[0] != "pixel" {
		t.Errorf("ProductTerms = %v, want [pixel]", cfg.ProductTerms)
	}
}
