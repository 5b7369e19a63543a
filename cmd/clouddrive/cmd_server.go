package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/clouddrive/app/controllers"
	"github.com/shashiranjanraj/clouddrive/app/providers"
	"github.com/shashiranjanraj/clouddrive/app/routes"
	"github.com/shashiranjanraj/clouddrive/config"
	"github.com/shashiranjanraj/clouddrive/pkg/app"
	"github.com/shashiranjanraj/clouddrive/pkg/router"
)

// clouddrive serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		closeSink := providers.AttachLogSink()
		defer closeSink()

		drive, err := providers.Boot(ctx)
		if err != nil {
			return err
		}
		defer drive.Close()

		ctrl := controllers.NewDriveController(drive.Service, config.MaxUploadBytes())
		return newApplication(ctrl).Serve(ctx)
	},
}

// clouddrive route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := newApplication(controllers.NewDriveController(nil, 0)).RouteList()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func newApplication(ctrl *controllers.DriveController) *app.Application {
	return app.New().Routes(func(r *router.Router) {
		routes.RegisterAPI(r, ctrl)
	})
}
