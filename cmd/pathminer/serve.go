package main

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/DeusData/pathminer/internal/config"
	"github.com/DeusData/pathminer/internal/namestore"
	"github.com/DeusData/pathminer/internal/tools"
)

func newServeCmd(ro *rootOptions) *cobra.Command {
	var namesDB string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extraction as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(ro.configPath)
			if err != nil {
				return err
			}

			var store *namestore.Store
			if namesDB != "" {
				store, err = namestore.Open(namesDB)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			tools.Version = version
			srv := tools.NewServer(cfg, store)
			slog.Info("serve.start", "names_db", namesDB)
			return srv.MCPServer().Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
	cmd.Flags().StringVar(&namesDB, "names-db", "", "name store for the lookup_names tool")
	return cmd
}
