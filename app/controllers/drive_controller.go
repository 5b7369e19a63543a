package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/clouddrive/app/models"
	"github.com/shashiranjanraj/clouddrive/app/services"
	"github.com/shashiranjanraj/clouddrive/pkg/ctx"
	"github.com/shashiranjanraj/clouddrive/pkg/logger"
	"github.com/shashiranjanraj/clouddrive/pkg/telegram"
	"github.com/shashiranjanraj/clouddrive/pkg/validate"
)

const (
	msgUploaded        = "File uploaded and added to the list."
	msgNoFile          = "File upload failed. No file was received."
	msgUploadFailed    = "File upload failed. The file could not be stored."
	msgUploadTooLarge  = "File upload failed. The file is too large."
	msgFolderCreated   = "Folder created successfully."
	msgFolderFailed    = "Folder could not be saved."
	msgMissingCreds    = "Bot token and channel id are both required."
	msgInvalidToken    = "Invalid Bot Token. Connection failed."
	msgTelegramDown    = "Could not reach the Telegram API. Check the token or network."
	msgCloudSaveFailed = "Cloud connection was verified but could not be saved."
)

type uploadResponse struct {
	Message string       `json:"message"`
	File    *models.File `json:"file"`
}

type folderRequest struct {
	FolderName string `json:"folderName" validate:"required"`
}

type folderResponse struct {
	Message string         `json:"message"`
	Folder  *models.Folder `json:"folder"`
}

type connectRequest struct {
	Token     string     `json:"token"     validate:"required,max=256"`
	ChannelID flexString `json:"channelId" validate:"required,max=64"`
}

type connectResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Cloud   *models.TelegramCloud `json:"cloud,omitempty"`
}

// flexString accepts a JSON string or number. Channel ids are often sent
// as numbers ("-100123" vs -100123).
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// DriveController serves the drive API.
type DriveController struct {
	drive     *services.DriveService
	maxUpload int64
}

// NewDriveController builds the controller. maxUpload caps multipart
// bodies in bytes; 0 means unlimited.
func NewDriveController(drive *services.DriveService, maxUpload int64) *DriveController {
	return &DriveController{drive: drive, maxUpload: maxUpload}
}

// Files GET /api/files
func (d *DriveController) Files(c *ctx.Context) {
	c.JSON(http.StatusOK, d.drive.List(c.Context()))
}

// Upload POST /api/upload (multipart field "file")
func (d *DriveController) Upload(c *ctx.Context) {
	log := logger.WithCtx(c.Context())

	f, fh, err := c.FormFile("file", d.maxUpload)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, ctx.ErrNoFile):
			c.Text(http.StatusInternalServerError, msgNoFile)
		case errors.As(err, &maxErr):
			c.Text(http.StatusRequestEntityTooLarge, msgUploadTooLarge)
		default:
			log.Warn("upload form unreadable", "error", err)
			c.Text(http.StatusBadRequest, msgUploadFailed)
		}
		return
	}
	defer f.Close()

	file, err := d.drive.Upload(c.Context(), services.UploadInput{
		Name:     fh.Filename,
		MIMEType: fh.Header.Get("Content-Type"),
		Body:     f,
	})
	if err != nil {
		if errors.Is(err, services.ErrMissingFile) {
			c.Text(http.StatusInternalServerError, msgNoFile)
			return
		}
		log.Error("upload failed", "name", fh.Filename, "error", err)
		c.Text(http.StatusInternalServerError, msgUploadFailed)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{Message: msgUploaded, File: file})
}

// Download GET /api/files/{id}/content
func (d *DriveController) Download(c *ctx.Context) {
	file, rc, err := d.drive.Open(c.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			c.NotFound()
			return
		}
		logger.WithCtx(c.Context()).Error("download failed", "id", c.Param("id"), "error", err)
		c.Error(http.StatusInternalServerError, "File could not be read.")
		return
	}
	defer rc.Close()

	if err := c.Stream(file.Name, file.MIMEType, file.Size, rc); err != nil {
		logger.WithCtx(c.Context()).Warn("download interrupted", "id", c.Param("id"), "error", err)
	}
}

// CreateFolder POST /api/create-folder
func (d *DriveController) CreateFolder(c *ctx.Context) {
	var in folderRequest
	errs, err := c.ShouldBindJSON(&in)
	if err != nil {
		c.Text(http.StatusBadRequest, err.Error())
		return
	}
	if validate.HasErrors(errs) {
		c.Text(http.StatusBadRequest, validate.First(errs))
		return
	}

	folder, err := d.drive.CreateFolder(c.Context(), in.FolderName)
	if err != nil {
		if errors.Is(err, services.ErrMissingFolderName) {
			c.Text(http.StatusBadRequest, "The folderName field is required.")
			return
		}
		logger.WithCtx(c.Context()).Error("create folder failed", "error", err)
		c.Text(http.StatusInternalServerError, msgFolderFailed)
		return
	}

	c.JSON(http.StatusOK, folderResponse{Message: msgFolderCreated, Folder: folder})
}

// ConnectTelegram POST /api/telegram/connect
func (d *DriveController) ConnectTelegram(c *ctx.Context) {
	var in connectRequest
	errs, err := c.ShouldBindJSON(&in)
	if err != nil || validate.HasErrors(errs) {
		c.JSON(http.StatusBadRequest, connectResponse{Message: msgMissingCreds})
		return
	}

	res, err := d.drive.ConnectTelegram(c.Context(), in.Token, string(in.ChannelID))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, connectResponse{Success: true, Message: res.Message, Cloud: res.Cloud})
	case errors.Is(err, services.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, connectResponse{Message: msgMissingCreds})
	case errors.Is(err, telegram.ErrInvalidToken):
		c.JSON(http.StatusOK, connectResponse{Message: msgInvalidToken})
	case errors.Is(err, telegram.ErrUnreachable):
		c.JSON(http.StatusInternalServerError, connectResponse{Message: msgTelegramDown})
	default:
		logger.WithCtx(c.Context()).Error("telegram connect failed", "error", err)
		c.JSON(http.StatusInternalServerError, connectResponse{Message: msgCloudSaveFailed})
	}
}
