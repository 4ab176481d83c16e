package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DeusData/pathminer/internal/namestore"
)

func newNamesCmd() *cobra.Command {
	var db, file, run string
	var listRuns bool
	cmd := &cobra.Command{
		Use:   "names --db P (--file F | --runs)",
		Short: "Print the obfuscation rename table stored for a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if db == "" {
				return errors.New("--db is required")
			}
			if !listRuns && file == "" {
				return errors.New("one of --file and --runs is required")
			}
			store, err := namestore.Open(db)
			if err != nil {
				return err
			}
			defer store.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if listRuns {
				runs, err := store.Runs(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range runs {
					fmt.Fprintf(w, "%s\t%s\n", r.ID, r.StartedAt)
				}
				return nil
			}

			entries, err := store.Lookup(cmd.Context(), run, file)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return fmt.Errorf("no names stored for %s", file)
			}
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.MethodOrdinal, e.Method, e.Placeholder, e.Original)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&db, "db", "", "name store written by extract --names-db")
	f.StringVar(&file, "file", "", "file path exactly as it was extracted")
	f.StringVar(&run, "run", "", "run id (default: newest run holding the file)")
	f.BoolVar(&listRuns, "runs", false, "list stored runs instead")
	return cmd
}
