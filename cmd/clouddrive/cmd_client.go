package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/clouddrive/pkg/driveclient"
)

var (
	connectToken   string
	connectChannel string
)

// clouddrive ls
var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List files, folders and clouds",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := driveclient.New(serverURL())
		items, err := c.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("could not reach the server at %s: %w", serverURL(), err)
		}
		return driveclient.Render(os.Stdout, items)
	},
}

// clouddrive upload <path>
var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		c := driveclient.New(serverURL())
		file, err := c.Upload(cmd.Context(), filepath.Base(args[0]), f)
		if err := relisted(c, err); err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
		fmt.Printf("✅ Uploaded %s (%s)\n", file.Name, humanize.IBytes(uint64(file.Size)))
		return renderCached(c)
	},
}

// clouddrive mkdir <name>
var mkdirCmd = &cobra.Command{
	Use:   "mkdir <name>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := driveclient.New(serverURL())
		folder, err := c.CreateFolder(cmd.Context(), args[0])
		if err := relisted(c, err); err != nil {
			return fmt.Errorf("could not create folder: %w", err)
		}
		fmt.Printf("✅ Folder %q created\n", folder.Name)
		return renderCached(c)
	},
}

// clouddrive connect --token --channel
var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a Telegram bot channel as a cloud",
	RunE: func(cmd *cobra.Command, args []string) error {
		if connectToken == "" || connectChannel == "" {
			return errors.New("both --token and --channel are required")
		}
		c := driveclient.New(serverURL())
		res, err := c.ConnectTelegram(cmd.Context(), connectToken, connectChannel)
		if err := relisted(c, err); err != nil {
			return err
		}
		fmt.Println("✅", res.Message)
		return renderCached(c)
	},
}

func init() {
	connectCmd.Flags().StringVar(&connectToken, "token", "", "bot token from @BotFather")
	connectCmd.Flags().StringVar(&connectChannel, "channel", "", "channel id, e.g. -100123456789")
}

// relisted drops a refresh failure after a committed write; the listing
// is then simply not printed.
func relisted(c *driveclient.Client, err error) error {
	if errors.Is(err, driveclient.ErrRefresh) {
		fmt.Fprintln(os.Stderr, "warning:", err)
		return nil
	}
	return err
}

func renderCached(c *driveclient.Client) error {
	items, ok := c.Cached()
	if !ok {
		return nil
	}
	return driveclient.Render(os.Stdout, items)
}
