// Package app assembles the clouddrive HTTP application.
//
//	app.New().
//	    Routes(func(r *router.Router) { routes.RegisterAPI(r, drive) }).
//	    Serve(ctx)
package app

import (
	"context"
	"net"
	"net/http"

	"github.com/shashiranjanraj/clouddrive/config"
	"github.com/shashiranjanraj/clouddrive/internal/server"
	"github.com/shashiranjanraj/clouddrive/pkg/router"
)

// Application collects route registrations and builds the handler.
type Application struct {
	routesFns []func(*router.Router)
}

func New() *Application {
	return &Application{}
}

// Routes registers a route callback. Callbacks run in order when the
// handler is built.
func (a *Application) Routes(fn func(*router.Router)) *Application {
	a.routesFns = append(a.routesFns, fn)
	return a
}

// Handler builds the full middleware stack and routes.
func (a *Application) Handler() http.Handler {
	return buildHandler(a).Handler()
}

// RouteList returns every route the application registers.
func (a *Application) RouteList() []router.RouteInfo {
	return buildHandler(a).Routes()
}

// Serve listens on APP_HOST:APP_PORT until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	return server.Start(ctx, a.Handler(), server.Options{
		Addr: net.JoinHostPort(config.AppHost(), config.AppPort()),
	})
}
