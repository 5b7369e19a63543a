package routes_test

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/clouddrive/app/controllers"
	"github.com/shashiranjanraj/clouddrive/app/repositories"
	"github.com/shashiranjanraj/clouddrive/app/routes"
	"github.com/shashiranjanraj/clouddrive/app/services"
	"github.com/shashiranjanraj/clouddrive/pkg/app"
	"github.com/shashiranjanraj/clouddrive/pkg/docstore"
	"github.com/shashiranjanraj/clouddrive/pkg/logger"
	"github.com/shashiranjanraj/clouddrive/pkg/router"
	"github.com/shashiranjanraj/clouddrive/pkg/storage"
	"github.com/shashiranjanraj/clouddrive/pkg/telegram"
	"github.com/shashiranjanraj/clouddrive/pkg/testkit"
)

func TestDriveAPI_Scenarios(t *testing.T) {
	logger.SetOutput(io.Discard)

	bot := testkit.NewBotAPI()
	defer bot.Close()

	disk, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)

	repo := repositories.NewItemRepository(
		docstore.NewFileDocument(filepath.Join(t.TempDir(), "file_metadata.json")))
	drive := services.NewDriveService(
		repo,
		disk,
		telegram.NewBotVerifier(bot.Endpoint(), 5*time.Second),
		services.DriveOptions{StoragePrefix: "files"},
	)
	ctrl := controllers.NewDriveController(drive, 0)
	handler := app.New().Routes(func(r *router.Router) { routes.RegisterAPI(r, ctrl) }).Handler()

	testkit.Run(t, handler, bot, filepath.Join("testdata", "drive_api.json"))
}
