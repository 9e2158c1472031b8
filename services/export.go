package services

import (
	"strings"
	"time"

	"contentengine/models"
	"contentengine/utils"
)

// ByteOrderMark prefixes exported files so desktop editors detect UTF-8
const ByteOrderMark = "\uFEFF"

// DefaultExportTitle is used when the request has no title field
const DefaultExportTitle = "content"

// ExportFile is a rendered text export
type ExportFile struct {
	Filename string
	Body     []byte
}

// ContentDisposition is the attachment header for the file
func (f ExportFile) ContentDisposition() string {
	return `attachment; filename="` + f.Filename + `"`
}

var stampReplacer = strings.NewReplacer(":", "-", ".", "-")

// exportStamp is the ISO-8601 UTC timestamp with ':' and '.' replaced by '-'
func exportStamp(t time.Time) string {
	return stampReplacer.Replace(t.UTC().Format("2006-01-02T15:04:05.000Z"))
}

// Export renders title, prompt and output as a text file. It never fails.
func Export(req models.ExportRequest, now time.Time) ExportFile {
	title := DefaultExportTitle
	if req.Title != nil {
		title = *req.Title
	}
	var prompt, output string
	if req.Prompt != nil {
		prompt = *req.Prompt
	}
	if req.Output != nil {
		output = *req.Output
	}

	body := strings.Join([]string{
		"Title: " + title,
		"Exported: " + now.Local().Format("1/2/2006, 3:04:05 PM"),
		"",
		"--- Prompt ---",
		prompt,
		"",
		"--- Output ---",
		output,
	}, "\n")

	return ExportFile{
		Filename: utils.SanitizeFilename(title) + "_" + exportStamp(now) + ".txt",
		Body:     []byte(ByteOrderMark + body),
	}
}
