package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/shashiranjanraj/clouddrive/app/models"
	"github.com/shashiranjanraj/clouddrive/app/repositories"
	"github.com/shashiranjanraj/clouddrive/pkg/logger"
	"github.com/shashiranjanraj/clouddrive/pkg/metrics"
	"github.com/shashiranjanraj/clouddrive/pkg/storage"
	"github.com/shashiranjanraj/clouddrive/pkg/telegram"
)

var (
	ErrMissingFile        = errors.New("no file in upload")
	ErrMissingFolderName  = errors.New("folder name is required")
	ErrMissingCredentials = errors.New("bot token and channel id are both required")
	ErrItemNotFound       = errors.New("item not found")
)

const folderIDAttempts = 3

// DriveOptions tunes a DriveService. Zero values get defaults.
type DriveOptions struct {
	// StoragePrefix is the directory (or key prefix) blobs are written under.
	StoragePrefix string
	// DateLayout formats the creation date stored on every record.
	DateLayout string
	Now        func() time.Time
}

// DriveService implements the drive's operations on top of the item
// repository, a content disk and a bot verifier.
type DriveService struct {
	repo     *repositories.ItemRepository
	disk     storage.Disk
	verifier telegram.Verifier

	prefix     string
	dateLayout string
	now        func() time.Time

	idMu   sync.Mutex
	lastID int64
}

func NewDriveService(repo *repositories.ItemRepository, disk storage.Disk, verifier telegram.Verifier, opts DriveOptions) *DriveService {
	if opts.DateLayout == "" {
		opts.DateLayout = "2/1/2006"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &DriveService{
		repo:       repo,
		disk:       disk,
		verifier:   verifier,
		prefix:     strings.Trim(opts.StoragePrefix, "/"),
		dateLayout: opts.DateLayout,
		now:        opts.Now,
	}
}

// List returns every record exactly as stored.
func (s *DriveService) List(ctx context.Context) []models.Item {
	return s.repo.Load(ctx)
}

// UploadInput is one payload to store.
type UploadInput struct {
	Name     string
	MIMEType string
	Body     io.Reader
}

// Upload writes the payload to the content disk and then appends its
// record. If the record cannot be saved the blob is removed again.
func (s *DriveService) Upload(ctx context.Context, in UploadInput) (*models.File, error) {
	if in.Body == nil || strings.TrimSpace(in.Name) == "" {
		return nil, ErrMissingFile
	}
	log := logger.WithCtx(ctx)

	key := storageKey(in.Name)
	blob := s.blobPath(key)
	body := &countingReader{r: in.Body}
	if err := s.disk.PutStream(ctx, blob, body); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	file := &models.File{
		ID:       models.StringID(key),
		Name:     in.Name,
		Size:     body.n,
		Date:     s.today(),
		MIMEType: in.MIMEType,
	}
	if err := s.repo.Append(ctx, file); err != nil {
		if derr := s.disk.Delete(ctx, blob); derr != nil {
			log.Error("orphaned blob after failed metadata write", "blob", blob, "error", derr)
		}
		return nil, fmt.Errorf("record upload: %w", err)
	}

	metrics.UploadedBytes.WithLabelValues(s.disk.Name()).Add(float64(body.n))
	log.Info("file uploaded", "id", key, "size", body.n, "disk", s.disk.Name())
	return file, nil
}

// Open returns a stored file's record and its content. Caller closes rc.
func (s *DriveService) Open(ctx context.Context, id string) (*models.File, io.ReadCloser, error) {
	it, ok := s.repo.Get(ctx, models.StringID(id))
	file, isFile := it.(*models.File)
	if !ok || !isFile {
		return nil, nil, ErrItemNotFound
	}
	rc, err := s.disk.GetStream(ctx, s.blobPath(file.StorageKey()))
	if err != nil {
		if !s.disk.Exists(ctx, s.blobPath(file.StorageKey())) {
			return nil, nil, fmt.Errorf("%w: blob for %s is gone", ErrItemNotFound, id)
		}
		return nil, nil, err
	}
	return file, rc, nil
}

// CreateFolder appends a folder record under name exactly as given. No
// directory is created anywhere.
func (s *DriveService) CreateFolder(ctx context.Context, name string) (*models.Folder, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrMissingFolderName
	}

	var err error
	for attempt := 0; attempt < folderIDAttempts; attempt++ {
		folder := &models.Folder{
			ID:   models.IntID(s.nextFolderID()),
			Name: name,
			Date: s.today(),
			Path: "/" + name,
		}
		err = s.repo.Append(ctx, folder)
		if err == nil {
			logger.WithCtx(ctx).Info("folder created", "id", folder.ID.String(), "name", name)
			return folder, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateID) {
			break
		}
	}
	return nil, fmt.Errorf("record folder: %w", err)
}

// ConnectResult is a verified and stored cloud record.
type ConnectResult struct {
	Cloud   *models.TelegramCloud
	Message string
}

// ConnectTelegram verifies token and upserts the cloud record for
// channelID. Reconnecting a channel overwrites its previous record.
func (s *DriveService) ConnectTelegram(ctx context.Context, token, channelID string) (*ConnectResult, error) {
	token, channelID = strings.TrimSpace(token), strings.TrimSpace(channelID)
	if token == "" || channelID == "" {
		return nil, ErrMissingCredentials
	}
	log := logger.WithCtx(ctx)

	ident, err := s.verifier.Verify(ctx, token)
	if err != nil {
		result := "unreachable"
		if errors.Is(err, telegram.ErrInvalidToken) {
			result = "invalid_token"
		}
		metrics.TelegramVerifications.WithLabelValues(result).Inc()
		log.Warn("telegram verification failed", "channel_id", channelID, "result", result, "error", err)
		return nil, err
	}
	metrics.TelegramVerifications.WithLabelValues("ok").Inc()

	handle := ident.Username
	if handle == "" {
		handle = "Bot"
	}
	cloud := &models.TelegramCloud{
		ID:        models.TelegramCloudID(channelID),
		Name:      fmt.Sprintf("Telegram Cloud (@%s)", handle),
		Date:      s.today(),
		ChannelID: channelID,
		BotName:   ident.FirstName,
	}
	if err := s.repo.Upsert(ctx, cloud); err != nil {
		return nil, fmt.Errorf("record cloud: %w", err)
	}

	log.Info("telegram cloud connected", "id", cloud.ID.String(), "bot", ident.Username)
	return &ConnectResult{
		Cloud:   cloud,
		Message: fmt.Sprintf("Bot %q connection verified. Cloud added.", ident.FirstName),
	}, nil
}

func (s *DriveService) today() string {
	return s.now().Format(s.dateLayout)
}

func (s *DriveService) blobPath(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// nextFolderID returns the current time in milliseconds, bumped past the
// last id handed out so two folders in the same millisecond differ.
func (s *DriveService) nextFolderID() int64 {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// storageKey names a blob: an xid (time-ordered, unique per process)
// followed by a filesystem-safe form of the original name.
func storageKey(name string) string {
	return xid.New().String() + "-" + safeName(name)
}

func safeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
