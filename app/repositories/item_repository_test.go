package repositories_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/clouddrive/app/models"
	"github.com/shashiranjanraj/clouddrive/app/repositories"
	"github.com/shashiranjanraj/clouddrive/pkg/docstore"
)

// memDocument is an in-memory docstore.Document with switchable failures.
type memDocument struct {
	mu       sync.Mutex
	data     []byte
	readErr  error
	writeErr error
	writes   int
}

func (d *memDocument) Name() string { return "mem" }

func (d *memDocument) Read(context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.readErr != nil {
		return nil, d.readErr
	}
	if d.data == nil {
		return nil, docstore.ErrNotFound
	}
	return append([]byte(nil), d.data...), nil
}

func (d *memDocument) Write(_ context.Context, b []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.writeErr != nil {
		return d.writeErr
	}
	d.data = append([]byte(nil), b...)
	d.writes++
	return nil
}

func folder(id int64, name string) *models.Folder {
	return &models.Folder{ID: models.IntID(id), Name: name, Date: "1/1/2026", Path: "/" + name}
}

func TestLoad_MissingDocumentIsEmpty(t *testing.T) {
	repo := repositories.NewItemRepository(
		docstore.NewFileDocument(filepath.Join(t.TempDir(), "file_metadata.json")))

	items := repo.Load(context.Background())
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestLoad_CorruptDocumentIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := repositories.NewItemRepository(docstore.NewFileDocument(path))
	assert.Empty(t, repo.Load(context.Background()))
}

func TestLoad_ReadErrorIsEmpty(t *testing.T) {
	repo := repositories.NewItemRepository(&memDocument{readErr: errors.New("disk on fire")})
	assert.Empty(t, repo.Load(context.Background()))
}

func TestAppend_PersistsInOrder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "file_metadata.json")
	repo := repositories.NewItemRepository(docstore.NewFileDocument(path))

	require.NoError(t, repo.Append(ctx, folder(1, "A")))
	require.NoError(t, repo.Append(ctx, folder(2, "B")))
	require.NoError(t, repo.Append(ctx, folder(3, "A")))

	// A fresh repository over the same file sees the same sequence.
	items := repositories.NewItemRepository(docstore.NewFileDocument(path)).Load(ctx)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"A", "B", "A"}, []string{
		items[0].DisplayName(), items[1].DisplayName(), items[2].DisplayName(),
	})
}

func TestAppend_RejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewItemRepository(&memDocument{})

	require.NoError(t, repo.Append(ctx, folder(1, "A")))
	err := repo.Append(ctx, folder(1, "B"))
	assert.ErrorIs(t, err, repositories.ErrDuplicateID)
	assert.Len(t, repo.Load(ctx), 1)
}

func TestWrites_ReadErrorKeepsStoredRecords(t *testing.T) {
	ctx := context.Background()
	doc := &memDocument{}
	repo := repositories.NewItemRepository(doc)
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, repo.Append(ctx, folder(i, "f")))
	}

	doc.readErr = errors.New("redis: i/o timeout")
	err := repo.Append(ctx, folder(99, "new"))
	assert.ErrorIs(t, err, repositories.ErrUnreadable)
	assert.ErrorIs(t, err, doc.readErr)

	err = repo.Upsert(ctx, &models.TelegramCloud{
		ID: models.TelegramCloudID("5"), Name: "Telegram Cloud (@bot)", ChannelID: "5", Date: "1/1/2026",
	})
	assert.ErrorIs(t, err, repositories.ErrUnreadable)
	assert.Equal(t, 3, doc.writes, "nothing saved while the store was unreadable")

	doc.readErr = nil
	assert.Len(t, repo.Load(ctx), 3)
}

func TestAppend_OverwritesCorruptDocument(t *testing.T) {
	ctx := context.Background()
	doc := &memDocument{data: []byte("{not json")}
	repo := repositories.NewItemRepository(doc)

	require.NoError(t, repo.Append(ctx, folder(1, "A")))
	items := repo.Load(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].DisplayName())
}

func TestSave_FailureIsReported(t *testing.T) {
	ctx := context.Background()
	doc := &memDocument{}
	repo := repositories.NewItemRepository(doc)
	require.NoError(t, repo.Append(ctx, folder(1, "A")))

	doc.writeErr = errors.New("read-only filesystem")
	err := repo.Append(ctx, folder(2, "B"))
	require.Error(t, err)
	assert.ErrorIs(t, err, doc.writeErr)

	doc.writeErr = nil
	assert.Len(t, repo.Load(ctx), 1)
}

func TestUpsert_ReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewItemRepository(&memDocument{})

	require.NoError(t, repo.Append(ctx, folder(1, "Docs")))
	require.NoError(t, repo.Upsert(ctx, &models.TelegramCloud{
		ID: models.TelegramCloudID("123"), Name: "Telegram Cloud (@first)", ChannelID: "123", Date: "1/1/2026",
	}))
	require.NoError(t, repo.Append(ctx, folder(2, "Pics")))
	require.NoError(t, repo.Upsert(ctx, &models.TelegramCloud{
		ID: models.TelegramCloudID("123"), Name: "Telegram Cloud (@second)", ChannelID: "123", Date: "2/1/2026",
	}))

	items := repo.Load(ctx)
	require.Len(t, items, 3)
	cloud, ok := items[1].(*models.TelegramCloud)
	require.True(t, ok, "cloud keeps its position")
	assert.Equal(t, "Telegram Cloud (@second)", cloud.Name)
	assert.Equal(t, "2/1/2026", cloud.Date)
}

func TestUpsertByKey(t *testing.T) {
	a := folder(1, "A")
	b := folder(2, "B")

	got := repositories.UpsertByKey([]models.Item{a}, b.ID, b)
	assert.Len(t, got, 2)

	b2 := folder(2, "B2")
	got = repositories.UpsertByKey(got, b2.ID, b2)
	require.Len(t, got, 2)
	assert.Equal(t, "B2", got[1].DisplayName())

	// Identity on id kind: string "1" does not match integer 1.
	s := &models.File{ID: models.StringID("1"), Name: "one"}
	got = repositories.UpsertByKey(got, s.ID, s)
	assert.Len(t, got, 3)
}

func TestFind(t *testing.T) {
	items := []models.Item{folder(1, "A"), folder(2, "B")}

	it, idx := repositories.Find(items, models.IntID(2))
	assert.Equal(t, 1, idx)
	assert.Equal(t, "B", it.DisplayName())

	it, idx = repositories.Find(items, models.IntID(9))
	assert.Nil(t, it)
	assert.Equal(t, -1, idx)
}

func TestAppend_ConcurrentCallsKeepEveryRecord(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewItemRepository(&memDocument{})

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			assert.NoError(t, repo.Append(ctx, folder(n, "f")))
		}(int64(i))
	}
	wg.Wait()

	assert.Len(t, repo.Load(ctx), 25)
}
