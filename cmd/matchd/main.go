// Command matchd runs the 5D-style multiverse chess match server: a
// TCP listener that pairs clients into matches and relays their moves,
// plus an optional SSH-exposed read-only admin console.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// buildVersion is overridden at link time via -ldflags.
var buildVersion = "dev"

var rootCmd = &cobra.Command{
	Use:   "matchd [CONFIG-FILE]",
	Short: "An unofficial online-match server for multiverse chess",
	Long: `matchd accepts TCP connections from game clients, lets them host or
join matches, and relays per-move action frames between paired clients
until forfeit, disconnect, or timeout. It performs no rules judgment.

Running matchd with a bare config file path is equivalent to running
"matchd serve <CONFIG-FILE>".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		return runServe(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the matchd build version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(buildVersion)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
