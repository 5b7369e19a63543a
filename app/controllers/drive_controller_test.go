package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
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
)

// bots maps a token to the identity the fake verifier returns for it.
// "bad" is rejected and "down" is unreachable.
type bots map[string]telegram.Identity

func (b bots) Verify(_ context.Context, token string) (telegram.Identity, error) {
	switch token {
	case "bad":
		return telegram.Identity{}, fmt.Errorf("%w: Unauthorized", telegram.ErrInvalidToken)
	case "down":
		return telegram.Identity{}, fmt.Errorf("%w: dial tcp: timeout", telegram.ErrUnreachable)
	}
	id, ok := b[token]
	if !ok {
		return telegram.Identity{}, telegram.ErrInvalidToken
	}
	return id, nil
}

type env struct {
	handler http.Handler
	store   string
}

func newEnv(t *testing.T, verifier telegram.Verifier, maxUpload int64) *env {
	t.Helper()
	logger.SetOutput(io.Discard)

	store := filepath.Join(t.TempDir(), "file_metadata.json")
	repo := repositories.NewItemRepository(docstore.NewFileDocument(store))
	disk, err := storage.NewLocalDisk(t.TempDir())
	require.NoError(t, err)
	if verifier == nil {
		verifier = bots{}
	}
	drive := services.NewDriveService(repo, disk, verifier, services.DriveOptions{StoragePrefix: "files"})
	ctrl := controllers.NewDriveController(drive, maxUpload)

	return &env{
		handler: app.New().Routes(func(r *router.Router) { routes.RegisterAPI(r, ctrl) }).Handler(),
		store:   store,
	}
}

func (e *env) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func (e *env) upload(t *testing.T, field, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, name)
	require.NoError(t, err)
	_, _ = fw.Write([]byte(content))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.do(req)
}

func (e *env) list(t *testing.T) []map[string]any {
	t.Helper()
	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/files", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	return items
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestFiles_EmptyStore(t *testing.T) {
	e := newEnv(t, nil, 0)

	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateFolder_ThenList(t *testing.T) {
	e := newEnv(t, nil, 0)

	rec := e.postJSON("/api/create-folder", `{"folderName":"Docs"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.NotEmpty(t, body["message"])
	folder := body["folder"].(map[string]any)
	assert.Equal(t, "Docs", folder["name"])
	assert.Equal(t, "folder", folder["type"])
	assert.Equal(t, "/Docs", folder["path"])
	assert.IsType(t, float64(0), folder["id"], "folder ids are numbers")

	items := e.list(t)
	require.Len(t, items, 1)
	assert.Equal(t, folder, items[0])
}

func TestCreateFolder_LongNameAccepted(t *testing.T) {
	e := newEnv(t, nil, 0)

	name := strings.Repeat("n", 256)
	rec := e.postJSON("/api/create-folder", `{"folderName":"`+name+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	items := e.list(t)
	require.Len(t, items, 1)
	assert.Equal(t, name, items[0]["name"])
}

func TestCreateFolder_MissingName(t *testing.T) {
	e := newEnv(t, nil, 0)

	for _, body := range []string{`{}`, `{"folderName":""}`, `{"folderName":"   "}`, ``} {
		rec := e.postJSON("/api/create-folder", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
	assert.Empty(t, e.list(t))
}

func TestUpload(t *testing.T) {
	e := newEnv(t, nil, 0)

	rec := e.upload(t, "file", "photo.jpg", "jpeg-bytes")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	file := body["file"].(map[string]any)
	assert.Equal(t, "photo.jpg", file["name"])
	assert.Equal(t, "file", file["type"])
	assert.EqualValues(t, len("jpeg-bytes"), file["size"])

	items := e.list(t)
	require.Len(t, items, 1)

	rec = e.do(httptest.NewRequest(http.MethodGet, "/api/files/"+file["id"].(string)+"/content", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestUpload_NoFile(t *testing.T) {
	e := newEnv(t, nil, 0)

	rec := e.upload(t, "attachment", "photo.jpg", "x")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, e.list(t))

	rec = e.postJSON("/api/upload", `{}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	e := newEnv(t, nil, 1024)

	rec := e.upload(t, "file", "big.bin", strings.Repeat("x", 8192))
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.Empty(t, e.list(t))
}

func TestDownload_Unknown(t *testing.T) {
	e := newEnv(t, nil, 0)

	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/files/nope/content", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConnect_InvalidToken(t *testing.T) {
	e := newEnv(t, nil, 0)

	rec := e.postJSON("/api/telegram/connect", `{"token":"bad","channelId":"5"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.True(t, strings.HasPrefix(body["message"].(string), "Invalid Bot Token"))
	assert.NotContains(t, body, "cloud")
	assert.Empty(t, e.list(t))
}

func TestConnect_Unreachable(t *testing.T) {
	e := newEnv(t, nil, 0)

	rec := e.postJSON("/api/telegram/connect", `{"token":"down","channelId":"5"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, decode(t, rec)["success"])
	assert.Empty(t, e.list(t))
}

func TestConnect_MissingCredentials(t *testing.T) {
	e := newEnv(t, nil, 0)

	for _, body := range []string{`{"token":"good"}`, `{"channelId":"5"}`, `{"token":" ","channelId":"5"}`, `not json`} {
		rec := e.postJSON("/api/telegram/connect", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Equal(t, false, decode(t, rec)["success"])
	}
	assert.Empty(t, e.list(t))
}

func TestConnect_UpsertsByChannel(t *testing.T) {
	e := newEnv(t, bots{
		"good":  {Username: "MyBot", FirstName: "My Bot"},
		"other": {Username: "OtherBot", FirstName: "Other Bot"},
	}, 0)

	rec := e.postJSON("/api/telegram/connect", `{"token":"good","channelId":"5"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["message"], "My Bot")
	cloud := body["cloud"].(map[string]any)
	assert.Equal(t, "telegram-5", cloud["id"])
	assert.Equal(t, "telegram-cloud", cloud["type"])
	assert.Equal(t, "Telegram Cloud (@MyBot)", cloud["name"])
	assert.Equal(t, "5", cloud["channelId"])

	// Numeric channel ids address the same record.
	rec = e.postJSON("/api/telegram/connect", `{"token":"other","channelId":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	items := e.list(t)
	require.Len(t, items, 1)
	assert.Equal(t, "telegram-5", items[0]["id"])
	assert.Equal(t, "Telegram Cloud (@OtherBot)", items[0]["name"])
}

func TestListReflectsStoreFile(t *testing.T) {
	e := newEnv(t, nil, 0)
	legacy := `[{"id":1700000000000,"name":"Old","type":"folder","date":"1/1/2024","path":"/Old"}]`
	require.NoError(t, docstore.NewFileDocument(e.store).Write(context.Background(), []byte(legacy)))

	rec := e.do(httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.JSONEq(t, legacy, rec.Body.String())
}
