package routes

import (
	"github.com/shashiranjanraj/clouddrive/app/controllers"
	"github.com/shashiranjanraj/clouddrive/pkg/ctx"
	"github.com/shashiranjanraj/clouddrive/pkg/router"
)

func RegisterAPI(r *router.Router, drive *controllers.DriveController) {
	api := r.Group("/api")

	api.Get("/files", "files.index", ctx.Wrap(drive.Files))
	api.Get("/files/{id}/content", "files.content", ctx.Wrap(drive.Download))
	api.Post("/upload", "files.upload", ctx.Wrap(drive.Upload))
	api.Post("/create-folder", "folders.store", ctx.Wrap(drive.CreateFolder))
	api.Post("/telegram/connect", "telegram.connect", ctx.Wrap(drive.ConnectTelegram))
}
