package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the fleep-mcp application
var rootCmd = &cobra.Command{
	Use:   "fleep-mcp",
	Short: "MCP server for the Fleep messaging API",
	Long: `fleep-mcp exposes Fleep conversations to AI assistants through the
Model Context Protocol (MCP).

It authenticates against the Fleep API with the credentials from the
FLEEP_EMAIL and FLEEP_PASSWORD environment variables and provides tools
for creating conversations, sending messages and managing labels.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "fleep-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
