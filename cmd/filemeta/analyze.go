package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/JonMunkholm/filemeta/internal/config"
	"github.com/JonMunkholm/filemeta/internal/core"
)

type analyzeFlags struct {
	delimiters     []string
	enclosures     []string
	limitRows      int
	defaultCharset string
	maxBadHeaders  int
	maxBadFooters  int
	json           bool
}

func newAnalyzeCmd() *cobra.Command {
	f := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Analyze one or more delimited text files",
		Long: `Analyze reports the metadata of each FILE. Every file is attempted; the
command fails if any of them could not be analyzed.

Candidates may be given as single characters or by name: tab, space, comma,
semicolon, pipe, colon, quote, apostrophe.`,
		Example: `  filemeta analyze orders.csv
  filemeta analyze --delimiters pipe,tab --enclosures quote export.txt
  filemeta analyze --json *.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, f, args)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&f.delimiters, "delimiters", nil, "Delimiter candidates in priority order (default $DETECT_DELIMITERS or tab,semicolon,comma)")
	flags.StringSliceVar(&f.enclosures, "enclosures", nil, "Enclosure candidates in priority order (default $DETECT_ENCLOSURES or quote,apostrophe)")
	flags.IntVar(&f.limitRows, "limit-rows", 0, "Lines examined per file, 0 for all (default $DETECT_LIMIT_ROWS or 10000)")
	flags.StringVar(&f.defaultCharset, "default-charset", "", "Charset used when detection is inconclusive (default $DETECT_DEFAULT_CHARSET or ISO-8859-1)")
	flags.IntVar(&f.maxBadHeaders, "max-bad-headers", 0, "Tolerated junk lines before the data (default $DETECT_MAX_BAD_HEADERS or 10)")
	flags.IntVar(&f.maxBadFooters, "max-bad-footers", 0, "Tolerated junk lines after the data (default $DETECT_MAX_BAD_FOOTERS or 10)")
	flags.BoolVar(&f.json, "json", false, "Print results as a JSON array")

	return cmd
}

// options starts from the environment defaults and applies the flags that
// were set explicitly.
func (f *analyzeFlags) options(flags *pflag.FlagSet) (core.Options, error) {
	opts := detectionDefaults()

	if flags.Changed("delimiters") {
		opts.Delimiters = f.delimiters
	}
	if flags.Changed("enclosures") {
		opts.Enclosures = f.enclosures
	}
	if flags.Changed("default-charset") {
		opts.DefaultCharset = f.defaultCharset
	}

	ints := []struct {
		name string
		val  int
		dst  *int
	}{
		{"limit-rows", f.limitRows, &opts.LimitRows},
		{"max-bad-headers", f.maxBadHeaders, &opts.MaxBadHeaders},
		{"max-bad-footers", f.maxBadFooters, &opts.MaxBadFooters},
	}
	for _, i := range ints {
		if !flags.Changed(i.name) {
			continue
		}
		if i.val < 0 {
			return opts, fmt.Errorf("--%s %d: %w", i.name, i.val, core.ErrInvalidOption)
		}
		*i.dst = i.val
	}

	return opts, nil
}

// detectionDefaults reads DETECT_* from the environment. An invalid
// configuration falls back to the built-in defaults.
func detectionDefaults() core.Options {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("ignoring invalid configuration", "error", err)
		return core.DefaultOptions()
	}
	return core.OptionsFromConfig(cfg.Detection)
}

func runAnalyze(cmd *cobra.Command, f *analyzeFlags, paths []string) error {
	opts, err := f.options(cmd.Flags())
	if err != nil {
		return errors.New(core.FormatUserError(err))
	}

	svc := core.NewService(core.ServiceConfig{Defaults: opts})

	results := make([]*core.FileMetadata, 0, len(paths))
	failed := 0
	for _, path := range paths {
		meta, err := svc.Analyze(cmd.Context(), core.FileSource{Path: path}, opts)
		if err != nil {
			failed++
			slog.Debug("analysis failed", "file", path, "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, core.FormatUserError(err))
			continue
		}
		results = append(results, meta)
	}

	out := cmd.OutOrStdout()
	if f.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
	} else {
		for _, meta := range results {
			renderSummary(out, meta)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be analyzed", failed, len(paths))
	}
	return nil
}
