// Command clouddrive runs the drive server and talks to it.
//
//	clouddrive serve
//	clouddrive ls
//	clouddrive upload ./report.pdf
//	clouddrive mkdir Docs
//	clouddrive connect --token 123:abc --channel -100200300
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/clouddrive/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var serverFlag string

var rootCmd = &cobra.Command{
	Use:           "clouddrive",
	Short:         "clouddrive: a small file drive with Telegram cloud channels",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "",
		"drive server base URL (default http://localhost:<APP_PORT>)")

	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)
	rootCmd.AddCommand(itemsCmd)

	// Client
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(connectCmd)
}

func serverURL() string {
	if serverFlag != "" {
		return serverFlag
	}
	return "http://localhost:" + config.AppPort()
}
