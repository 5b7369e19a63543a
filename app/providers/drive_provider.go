// Package providers wires configuration into the drive's runtime objects.
package providers

import (
	"context"
	"fmt"

	"github.com/shashiranjanraj/clouddrive/app/repositories"
	"github.com/shashiranjanraj/clouddrive/app/services"
	"github.com/shashiranjanraj/clouddrive/config"
	"github.com/shashiranjanraj/clouddrive/pkg/docstore"
	"github.com/shashiranjanraj/clouddrive/pkg/logger"
	"github.com/shashiranjanraj/clouddrive/pkg/storage"
	"github.com/shashiranjanraj/clouddrive/pkg/telegram"
)

// Drive is the booted drive stack. Close releases its connections.
type Drive struct {
	Service *services.DriveService
	Items   *repositories.ItemRepository

	closers []func()
}

func (d *Drive) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// Boot loads configuration and connects the item store, the content disk
// and the bot verifier.
func Boot(ctx context.Context) (*Drive, error) {
	items, closeItems, err := OpenItems(ctx)
	if err != nil {
		return nil, err
	}
	d := &Drive{Items: items, closers: []func(){closeItems}}

	if err := storage.Connect(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}
	disk, err := storage.Use(config.StorageDefault())
	if err != nil {
		d.Close()
		return nil, err
	}

	verifier := telegram.NewBotVerifier(config.TelegramAPIEndpoint(), config.TelegramTimeout())
	d.Service = services.NewDriveService(items, disk, verifier, services.DriveOptions{
		StoragePrefix: config.StoragePrefix(),
		DateLayout:    config.DateLayout(),
	})

	logger.Info("drive ready",
		"item_store", items.Backend(),
		"disk", disk.Name(),
		"prefix", config.StoragePrefix(),
	)
	return d, nil
}

// OpenItems connects only the item store selected by ITEM_STORE.
func OpenItems(ctx context.Context) (*repositories.ItemRepository, func(), error) {
	if err := config.Load(); err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	switch config.ItemStore() {
	case "redis":
		doc, err := docstore.ConnectRedis(ctx, docstore.RedisOptions{
			Addr:     config.RedisAddr(),
			Password: config.RedisPassword(),
			Key:      config.ItemStoreRedisKey(),
		})
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewItemRepository(doc), func() { _ = doc.Close() }, nil
	default:
		doc := docstore.NewFileDocument(config.MetadataFile())
		return repositories.NewItemRepository(doc), func() {}, nil
	}
}

// AttachLogSink ships logs to MongoDB when LOG_MONGO_URI is set. A sink
// that cannot connect is skipped with a warning.
func AttachLogSink() func() {
	uri := config.LogMongoURI()
	if uri == "" {
		return func() {}
	}
	closeSink, err := logger.AttachMongo(uri, config.LogMongoDB(), config.LogMongoCollection())
	if err != nil {
		logger.Warn("mongo log sink disabled", "error", err)
		return func() {}
	}
	return closeSink
}
