package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateRejectsMissingInput(t *testing.T) {
	cfg := &Config{Output: "out.pmtiles", FilterPath: "filter.geojson", Concurrency: 1}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error when input is empty")
	}
}

func TestValidateRejectsBadOutputExtension(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.pmtiles")
	os.WriteFile(input, []byte("x"), 0o644)
	filterFile := filepath.Join(dir, "filter.geojson")
	os.WriteFile(filterFile, []byte("{}"), 0o644)

	cfg := &Config{Input: input, Output: "out.json", FilterPath: filterFile, Concurrency: 1}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for non-.pmtiles output extension")
	}
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.pmtiles")
	os.WriteFile(input, []byte("x"), 0o644)
	filterFile := filepath.Join(dir, "filter.geojson")
	os.WriteFile(filterFile, []byte("{}"), 0o644)

	cfg := &Config{
		Input:       input,
		Output:      filepath.Join(dir, "out.pmtiles"),
		FilterPath:  filterFile,
		Concurrency: 4,
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsNonPositiveConcurrency(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.pmtiles")
	os.WriteFile(input, []byte("x"), 0o644)
	filterFile := filepath.Join(dir, "filter.geojson")
	os.WriteFile(filterFile, []byte("{}"), 0o644)

	cfg := &Config{Input: input, Output: filepath.Join(dir, "out.pmtiles"), FilterPath: filterFile, Concurrency: 0}
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for zero concurrency")
	}
}
