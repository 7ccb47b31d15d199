// Package run wires together config, filter compilation, archive I/O, and
// the concurrent pipeline into the single end-to-end operation the CLI
// exposes.
package run

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/valpere/mvtfilter/internal/config"
	"github.com/valpere/mvtfilter/internal/errs"
	"github.com/valpere/mvtfilter/internal/filter"
	"github.com/valpere/mvtfilter/internal/pipeline"
	"github.com/valpere/mvtfilter/internal/pmtile"
)

// Execute runs one full archive rewrite per cfg.
func Execute(ctx context.Context, cfg *config.Config) error {
	start := time.Now()
	logf := func(format string, args ...interface{}) {
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}

	var collection *filter.Collection
	if cfg.FilterPath == "" {
		collection = filter.Empty()
		logf("no filter given, passing tiles through unchanged")
	} else {
		filterData, err := os.ReadFile(cfg.FilterPath)
		if err != nil {
			return errs.New(errs.CodeConfig, fmt.Sprintf("read filter file %q", cfg.FilterPath), err)
		}
		collection, err = filter.Build(filterData)
		if err != nil {
			return err
		}
		logf("compiled filter with %d region(s)", len(collection.Regions))
	}

	inputData, err := os.ReadFile(cfg.Input)
	if err != nil {
		return errs.New(errs.CodeArchive, fmt.Sprintf("read input archive %q", cfg.Input), err)
	}
	reader, err := pmtile.Open(inputData)
	if err != nil {
		return err
	}
	logf("opened archive with %d tile(s)", len(reader.Entries()))

	metadata, err := reader.Metadata()
	if err != nil {
		return err
	}
	overriddenMetadata, err := pmtile.ApplyOverrides(metadata, pmtile.MetadataOverrides{
		Name:        cfg.Name,
		Description: cfg.Description,
		Attribution: cfg.Attribution,
	})
	if err != nil {
		return errs.New(errs.CodeArchive, "apply metadata overrides", err)
	}

	writer := pmtile.NewWriter(reader.Header(), overriddenMetadata)

	if err := pipeline.Run(ctx, reader, writer, collection, cfg.Concurrency); err != nil {
		return err
	}

	out, err := writer.Finalize()
	if err != nil {
		return err
	}

	if err := os.WriteFile(cfg.Output, out, 0o644); err != nil {
		return errs.New(errs.CodeArchive, fmt.Sprintf("write output archive %q", cfg.Output), err)
	}

	fmt.Printf("wrote %q in %s\n", cfg.Output, time.Since(start).Round(time.Millisecond))
	return nil
}
