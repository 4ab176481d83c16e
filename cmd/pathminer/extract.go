package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/DeusData/pathminer/internal/batch"
	"github.com/DeusData/pathminer/internal/config"
	"github.com/DeusData/pathminer/internal/discover"
	"github.com/DeusData/pathminer/internal/extract"
	"github.com/DeusData/pathminer/internal/namestore"
)

type extractOptions struct {
	file        string
	dir         string
	out         string
	namesDB     string
	metricsFile string
	ignoreFile  string
}

func newExtractCmd(ro *rootOptions) *cobra.Command {
	eo := &extractOptions{}
	var flags *config.Flags
	cmd := &cobra.Command{
		Use:   "extract (--file F | --dir D)",
		Short: "Extract path contexts from a file or a directory tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (eo.file == "") == (eo.dir == "") {
				return errors.New("exactly one of --file and --dir is required")
			}
			cfg, err := config.Load(ro.configPath)
			if err != nil {
				return err
			}
			if err := flags.Apply(cfg); err != nil {
				return err
			}
			return runExtract(cmd, cfg, eo)
		},
	}
	f := cmd.Flags()
	f.StringVar(&eo.file, "file", "", "extract a single source file")
	f.StringVar(&eo.dir, "dir", "", "extract every supported file under a directory")
	f.StringVarP(&eo.out, "out", "o", "", "write features to this file instead of stdout")
	f.StringVar(&eo.namesDB, "names-db", "", "store obfuscation rename tables in this SQLite database")
	f.StringVar(&eo.metricsFile, "metrics-file", "", "write Prometheus metrics of the run to this file")
	f.StringVar(&eo.ignoreFile, "ignore-file", "", "extra ignore patterns (default: <dir>/"+discover.IgnoreFileName+")")
	flags = config.BindFlags(f)
	return cmd
}

func runExtract(cmd *cobra.Command, cfg *config.Config, eo *extractOptions) (err error) {
	ctx := cmd.Context()
	opts, err := cfg.ExtractOptions()
	if err != nil {
		return err
	}
	e := extract.New(opts)

	var out io.Writer = cmd.OutOrStdout()
	if eo.out != "" {
		fh, createErr := os.Create(eo.out)
		if createErr != nil {
			return fmt.Errorf("create output: %w", createErr)
		}
		defer func() {
			if closeErr := fh.Close(); err == nil {
				err = closeErr
			}
		}()
		out = fh
	}
	bw := bufio.NewWriter(out)
	defer func() {
		if flushErr := bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	var names batch.NameSink
	if eo.namesDB != "" {
		store, openErr := namestore.Open(eo.namesDB)
		if openErr != nil {
			return openErr
		}
		defer store.Close()
		snapshot, _ := yaml.Marshal(cfg)
		run, beginErr := store.BeginRun(ctx, string(snapshot))
		if beginErr != nil {
			return beginErr
		}
		slog.Info("names.run", "db", eo.namesDB, "run_id", run)
		names = store
	}

	if eo.file != "" {
		return extractFile(cmd, e, eo.file, bw, names)
	}

	files, err := discover.Discover(ctx, eo.dir, &discover.Options{
		IgnoreFile: eo.ignoreFile,
		Languages:  cfg.LanguageList(),
	})
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	reg := prometheus.NewRegistry()
	s := &batch.Scheduler{
		Runner:   e,
		Out:      bw,
		Names:    names,
		Reporter: batch.SlogReporter{},
		Metrics:  batch.NewMetrics(reg),
		Workers:  cfg.NumThreads,
		Backlog:  cfg.Backlog,
		Timeout:  cfg.Timeout(),
	}
	sum, runErr := s.Run(ctx, discover.Paths(files))
	if eo.metricsFile != "" {
		if err := prometheus.WriteToTextfile(eo.metricsFile, reg); err != nil {
			slog.Warn("metrics.write.err", "path", eo.metricsFile, "err", err)
		}
	}
	if runErr != nil {
		return runErr
	}
	slog.Info("extract.summary", "files", sum.Total(), "ok", sum.OK, "failed", sum.Failed,
		"skipped", sum.Skipped, "timed_out", sum.TimedOut)
	return nil
}

// extractFile runs one file in the foreground; its failure is the command's.
func extractFile(cmd *cobra.Command, e *extract.Extractor, path string, out io.Writer, names batch.NameSink) error {
	res, err := e.File(path).Run(cmd.Context())
	if err != nil {
		return err
	}
	if res.Output == "" {
		slog.Debug("extract.empty", "path", path)
		return nil
	}
	if _, err := io.WriteString(out, res.Output+"\n"); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if names != nil && res.Names != nil {
		return names.SaveNames(cmd.Context(), path, res.Names)
	}
	return nil
}
