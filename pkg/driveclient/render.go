package driveclient

import (
	"fmt"
	"io"
	"path"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/shashiranjanraj/clouddrive/app/models"
)

// EmptyListing is printed when there is nothing to show.
const EmptyListing = "No files or folders yet."

// Render writes one row per record: icon, name, date and size.
func Render(w io.Writer, items []models.Item) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, EmptyListing)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, it := range items {
		date := it.CreatedOn()
		if date == "" {
			date = "---"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", Icon(it), it.DisplayName(), date, SizeText(it))
	}
	return tw.Flush()
}

// SizeText is the size column: binary units for files, the kind otherwise.
func SizeText(it models.Item) string {
	switch v := it.(type) {
	case *models.File:
		return humanize.IBytes(uint64(max(v.Size, 0)))
	case *models.Folder:
		return "Folder"
	default:
		return "Cloud"
	}
}

// Icon picks a glyph by record kind, and by extension for files.
func Icon(it models.Item) string {
	switch it.Kind() {
	case models.KindFolder:
		return "📁"
	case models.KindTelegramCloud:
		return "☁️"
	}
	switch strings.ToLower(strings.TrimPrefix(path.Ext(it.DisplayName()), ".")) {
	case "png", "jpg", "jpeg", "gif", "webp":
		return "🖼️"
	case "pdf":
		return "📕"
	case "zip", "rar", "7z", "gz":
		return "📦"
	case "mp4", "avi", "mov", "mkv":
		return "🎬"
	case "js", "html", "css", "go":
		return "📜"
	default:
		return "📄"
	}
}
