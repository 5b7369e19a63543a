// Package driveclient is a Go client for the clouddrive HTTP API.
//
// The client keeps the result of the last successful List as its cache.
// Writes never touch the cache directly; each successful write calls List
// again so the cache always mirrors the server's store.
package driveclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/clouddrive/app/models"
)

// APIError is a request the server refused or failed.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("clouddrive: HTTP %d", e.Status)
	}
	return fmt.Sprintf("clouddrive: %s (HTTP %d)", e.Message, e.Status)
}

// ErrRefresh wraps a failed listing refresh after a successful write. The
// write itself is committed on the server.
var ErrRefresh = errors.New("clouddrive: write succeeded but listing refresh failed")

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

type Client struct {
	base string
	http *http.Client

	mu      sync.RWMutex
	cache   []models.Item
	fetched bool
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Cached returns the last listing fetched and whether one exists.
func (c *Client) Cached() ([]models.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Item(nil), c.cache...), c.fetched
}

// List fetches every record and replaces the cache.
func (c *Client) List(ctx context.Context) ([]models.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/files", nil)
	if err != nil {
		return nil, err
	}
	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	items, err := models.UnmarshalItems(body)
	if err != nil {
		return nil, fmt.Errorf("clouddrive: decode listing: %w", err)
	}

	c.mu.Lock()
	c.cache = items
	c.fetched = true
	c.mu.Unlock()
	return append([]models.Item(nil), items...), nil
}

// Upload streams r as a multipart file named name.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (*models.File, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		fw, err := mw.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(fw, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/upload", pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out struct {
		File json.RawMessage `json:"file"`
	}
	if err := c.doJSON(req, &out); err != nil {
		pr.Close()
		return nil, err
	}
	file, err := decodeAs[*models.File](out.File)
	if err != nil {
		return nil, err
	}
	return file, c.refresh(ctx)
}

// CreateFolder adds a folder record.
func (c *Client) CreateFolder(ctx context.Context, name string) (*models.Folder, error) {
	var out struct {
		Folder json.RawMessage `json:"folder"`
	}
	if err := c.postJSON(ctx, "/api/create-folder", map[string]string{"folderName": name}, &out); err != nil {
		return nil, err
	}
	folder, err := decodeAs[*models.Folder](out.Folder)
	if err != nil {
		return nil, err
	}
	return folder, c.refresh(ctx)
}

// ConnectResult is the server's answer to a successful connect.
type ConnectResult struct {
	Message string
	Cloud   *models.TelegramCloud
}

// ConnectTelegram verifies token on the server and records the channel.
// A rejected token is an *APIError with the server's message.
func (c *Client) ConnectTelegram(ctx context.Context, token, channelID string) (*ConnectResult, error) {
	var out struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Cloud   json.RawMessage `json:"cloud"`
	}
	payload := map[string]string{"token": token, "channelId": channelID}
	if err := c.postJSON(ctx, "/api/telegram/connect", payload, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &APIError{Status: http.StatusOK, Message: out.Message}
	}
	cloud, err := decodeAs[*models.TelegramCloud](out.Cloud)
	if err != nil {
		return nil, err
	}
	return &ConnectResult{Message: out.Message, Cloud: cloud}, c.refresh(ctx)
}

func (c *Client) refresh(ctx context.Context) error {
	if _, err := c.List(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRefresh, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out any) error {
	body, err := c.do(req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("clouddrive: decode response: %w", err)
	}
	return nil
}

// do sends req and returns the body of a 2xx response. Anything else
// becomes an *APIError carrying the server's message.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("clouddrive: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("clouddrive: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage extracts a message from a JSON {"message":...} body or
// falls back to the plain-text body.
func errorMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		return env.Message
	}
	return strings.TrimSpace(string(body))
}

func decodeAs[T models.Item](raw json.RawMessage) (T, error) {
	var zero T
	it, err := models.UnmarshalItem(raw)
	if err != nil {
		return zero, fmt.Errorf("clouddrive: decode record: %w", err)
	}
	v, ok := it.(T)
	if !ok {
		return zero, fmt.Errorf("clouddrive: unexpected record type %q", it.Kind())
	}
	return v, nil
}
