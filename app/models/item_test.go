package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/clouddrive/app/models"
)

// A store file as written by earlier deployments.
const legacyStore = `[
  {"id": "1697000000000-report.pdf", "name": "report.pdf", "size": 2048, "type": "file", "date": "11/10/2023"},
  {"id": 1697000000123, "name": "Docs", "type": "folder", "date": "11/10/2023", "path": "/Docs"},
  {"id": "telegram-5", "name": "Telegram Cloud (@MyBot)", "type": "telegram-cloud", "date": "12/10/2023", "channelId": "5"}
]`

func TestUnmarshalItems_LegacyStore(t *testing.T) {
	items, err := models.UnmarshalItems([]byte(legacyStore))
	require.NoError(t, err)
	require.Len(t, items, 3)

	file, ok := items[0].(*models.File)
	require.True(t, ok)
	assert.Equal(t, int64(2048), file.Size)
	assert.Equal(t, "1697000000000-report.pdf", file.StorageKey())

	folder, ok := items[1].(*models.Folder)
	require.True(t, ok)
	assert.True(t, folder.ID.IsNumber())
	assert.Equal(t, "/Docs", folder.Path)

	cloud, ok := items[2].(*models.TelegramCloud)
	require.True(t, ok)
	assert.Equal(t, models.TelegramCloudID("5"), cloud.ID)
	assert.Equal(t, "5", cloud.ChannelID)
}

func TestMarshalItems_KeepsRecordShape(t *testing.T) {
	items := []models.Item{
		&models.File{ID: models.StringID("k-a.txt"), Name: "a.txt", Size: 3, Date: "1/1/2026"},
		&models.Folder{ID: models.IntID(42), Name: "Docs", Date: "1/1/2026", Path: "/Docs"},
		&models.TelegramCloud{ID: models.TelegramCloudID("9"), Name: "Telegram Cloud (@Bot)", Date: "1/1/2026", ChannelID: "9"},
	}

	data, err := models.MarshalItems(items)
	require.NoError(t, err)

	var generic []map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))

	assert.Equal(t, "file", generic[0]["type"])
	assert.EqualValues(t, 3, generic[0]["size"])

	assert.Equal(t, "folder", generic[1]["type"])
	assert.EqualValues(t, 42, generic[1]["id"], "folder ids stay numeric")
	assert.NotContains(t, generic[1], "size")

	assert.Equal(t, "telegram-cloud", generic[2]["type"])
	assert.Equal(t, "telegram-9", generic[2]["id"])
	assert.NotContains(t, generic[2], "size")
}

func TestMarshalItems_EmptyIsArray(t *testing.T) {
	data, err := models.MarshalItems(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestID_IdentityIncludesKind(t *testing.T) {
	assert.NotEqual(t, models.StringID("5"), models.IntID(5))
	assert.Equal(t, models.IntID(5), models.IntID(5))
	assert.Equal(t, "5", models.IntID(5).String())
	assert.True(t, models.ID{}.IsZero())
}

func TestUnmarshalItems_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown type": `[{"id":"x","name":"x","type":"symlink"}]`,
		"missing id":   `[{"name":"x","type":"file"}]`,
		"float id":     `[{"id":1.5,"name":"x","type":"folder"}]`,
		"not an array": `{"id":"x"}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := models.UnmarshalItems([]byte(doc))
			assert.Error(t, err)
		})
	}
}
