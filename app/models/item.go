package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind is the closed set of item types.
type Kind string

const (
	KindFile          Kind = "file"
	KindFolder        Kind = "folder"
	KindTelegramCloud Kind = "telegram-cloud"
)

// Item is one record in the drive's metadata store. The concrete type is
// one of *File, *Folder or *TelegramCloud.
type Item interface {
	ItemID() ID
	Kind() Kind
	DisplayName() string
	CreatedOn() string
}

// ID is an item identifier that remembers whether it was a JSON string or
// a JSON number. Two IDs are equal only when both kind and value match.
type ID struct {
	str   string
	num   int64
	isNum bool
}

func StringID(s string) ID { return ID{str: s} }
func IntID(n int64) ID     { return ID{num: n, isNum: true} }

func (id ID) IsNumber() bool { return id.isNum }
func (id ID) IsZero() bool   { return id == ID{} }

func (id ID) String() string {
	if id.isNum {
		return strconv.FormatInt(id.num, 10)
	}
	return id.str
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.isNum {
		return []byte(strconv.FormatInt(id.num, 10)), nil
	}
	return json.Marshal(id.str)
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("models: id %s is neither a string nor an integer", b)
	}
	*id = IntID(n)
	return nil
}

// File is an uploaded payload. ID is the storage key of its blob.
type File struct {
	ID       ID     `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Date     string `json:"date"`
	MIMEType string `json:"mimeType,omitempty"`
}

func (f *File) ItemID() ID          { return f.ID }
func (f *File) Kind() Kind          { return KindFile }
func (f *File) DisplayName() string { return f.Name }
func (f *File) CreatedOn() string   { return f.Date }

// StorageKey is the blob name on the content disk.
func (f *File) StorageKey() string { return f.ID.String() }

func (f *File) MarshalJSON() ([]byte, error) {
	type alias File
	return json.Marshal(struct {
		*alias
		Type Kind `json:"type"`
	}{(*alias)(f), KindFile})
}

// Folder is a logical grouping tag. Nothing exists on disk for it.
type Folder struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
	Path string `json:"path"`
}

func (f *Folder) ItemID() ID          { return f.ID }
func (f *Folder) Kind() Kind          { return KindFolder }
func (f *Folder) DisplayName() string { return f.Name }
func (f *Folder) CreatedOn() string   { return f.Date }

func (f *Folder) MarshalJSON() ([]byte, error) {
	type alias Folder
	return json.Marshal(struct {
		*alias
		Type Kind `json:"type"`
	}{(*alias)(f), KindFolder})
}

// TelegramCloudPrefix prefixes the channel id to form a cloud record id.
const TelegramCloudPrefix = "telegram-"

// TelegramCloudID derives the record id for a channel. Reconnecting the
// same channel always lands on the same id.
func TelegramCloudID(channelID string) ID {
	return StringID(TelegramCloudPrefix + channelID)
}

// TelegramCloud is a verified bot channel shown as a virtual drive.
type TelegramCloud struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Date      string `json:"date"`
	ChannelID string `json:"channelId"`
	BotName   string `json:"botName,omitempty"`
}

func (c *TelegramCloud) ItemID() ID          { return c.ID }
func (c *TelegramCloud) Kind() Kind          { return KindTelegramCloud }
func (c *TelegramCloud) DisplayName() string { return c.Name }
func (c *TelegramCloud) CreatedOn() string   { return c.Date }

func (c *TelegramCloud) MarshalJSON() ([]byte, error) {
	type alias TelegramCloud
	return json.Marshal(struct {
		*alias
		Type Kind `json:"type"`
	}{(*alias)(c), KindTelegramCloud})
}
