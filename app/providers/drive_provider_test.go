package providers_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/clouddrive/app/providers"
	"github.com/shashiranjanraj/clouddrive/app/services"
	"github.com/shashiranjanraj/clouddrive/config"
)

func TestBoot_FileStoreAndLocalDisk(t *testing.T) {
	dir := t.TempDir()
	config.Set("ITEM_STORE", "file")
	config.Set("METADATA_FILE", filepath.Join(dir, "file_metadata.json"))
	config.Set("STORAGE_DISK", "local")
	config.Set("STORAGE_LOCAL_ROOT", dir)
	t.Cleanup(func() {
		for _, k := range []string{"METADATA_FILE", "STORAGE_LOCAL_ROOT"} {
			config.Set(k, "")
		}
	})

	drive, err := providers.Boot(context.Background())
	require.NoError(t, err)
	defer drive.Close()

	assert.Equal(t, "file", drive.Items.Backend())

	file, err := drive.Service.Upload(context.Background(), services.UploadInput{
		Name: "a.txt",
		Body: strings.NewReader("abc"),
	})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, config.StoragePrefix(), file.StorageKey()))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "file_metadata.json"))
	assert.NoError(t, err)
}

func TestBoot_UnknownDisk(t *testing.T) {
	config.Set("STORAGE_DISK", "ftp")
	t.Cleanup(func() { config.Set("STORAGE_DISK", "") })

	_, err := providers.Boot(context.Background())
	assert.Error(t, err)
}

func TestAttachLogSink_DisabledWithoutURI(t *testing.T) {
	config.Set("LOG_MONGO_URI", "")
	closeSink := providers.AttachLogSink()
	assert.NotNil(t, closeSink)
	closeSink()
}
