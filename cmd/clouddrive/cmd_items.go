package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/clouddrive/app/models"
	"github.com/shashiranjanraj/clouddrive/app/providers"
	"github.com/shashiranjanraj/clouddrive/pkg/driveclient"
	"github.com/shashiranjanraj/clouddrive/pkg/logger"
)

var itemsJSON bool

// clouddrive items: read the item store directly, without a server.
var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Print the item store as the server would list it",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetOutput(os.Stderr)

		repo, closeStore, err := providers.OpenItems(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore()

		items := repo.Load(cmd.Context())
		if itemsJSON {
			b, err := models.MarshalItems(items)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(b, '\n'))
			return err
		}
		return driveclient.Render(os.Stdout, items)
	},
}

func init() {
	itemsCmd.Flags().BoolVar(&itemsJSON, "json", false, "print the raw JSON document")
}
