package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	ro := &rootOptions{}
	root := &cobra.Command{
		Use:   "pathminer",
		Short: "Extract AST path contexts from source code",
		Long: `pathminer parses Java, Python, Go and JavaScript sources and writes, for every
method, the syntactic paths between each pair of its leaves. The output is the
input format of code2vec-style models: one line per method (or per local
variable with --variables), a name followed by source,path,target records.

Settings come from .pathminer.yaml in the working directory (or --config) and
can be overridden by flags.

Examples:
  pathminer extract --dir ./src --num-threads 8 > corpus.c2v
  pathminer extract --file Main.java --no-hash --pretty-print
  pathminer extract --dir ./src --obfuscate --seed 7 --names-db names.db
  pathminer names --db names.db --file /abs/path/Main.java
  pathminer serve`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if ro.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&ro.configPath, "config", "", "path to config file (default: ./.pathminer.yaml)")
	root.PersistentFlags().BoolVarP(&ro.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newExtractCmd(ro), newServeCmd(ro), newNamesCmd())
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "pathminer:", err)
		os.Exit(1)
	}
}
