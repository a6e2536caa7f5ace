package cmd

import (
	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/hrdesk/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio exposing the ask_hr_question tool.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		a, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		mcpserver.Version = Version

		logger.Info("hrdesk MCP server started on stdio", "index_backend", cfg.Index.Backend)

		return mcpserver.NewServer(a.pipeline).Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
