package bulk

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type, a .csv file is required")
	ErrNoRows          = errors.New("file has no data rows")
	ErrMalformedFile   = errors.New("file could not be parsed")
)

// ExportHeader is the header row of every exported batch.
var ExportHeader = []string{"Teléfono", "Mensaje", "Link WhatsApp", "Link Telegram"}

// FileData is an uploaded data file: one header row and the data rows below it.
type FileData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ColumnIndex returns the position of the first header named column, or -1.
func (f *FileData) ColumnIndex(column string) int {
	for i, h := range f.Headers {
		if h == column {
			return i
		}
	}
	return -1
}

// ParseFile reads a comma-separated file. Quoted fields follow RFC 4180 and
// are kept verbatim, so a file produced by WriteExport reads back unchanged.
// Unquoted cells are trimmed and blank lines are skipped.
func ParseFile(filename string, content []byte) (*FileData, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return nil, ErrUnsupportedFile
	}

	content = bytes.TrimPrefix(content, []byte("\ufeff"))

	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	lines := bytes.Split(content, []byte("\n"))

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}
		if isBlank(record) {
			continue
		}
		for i := range record {
			if !quotedField(r, lines, i) {
				record[i] = strings.TrimSpace(record[i])
			}
		}
		records = append(records, record)
	}

	if len(records) < 2 {
		return nil, ErrNoRows
	}

	return &FileData{Headers: records[0], Rows: records[1:]}, nil
}

// quotedField reports whether field of the record just read opened with a
// quote character. lines are the raw input lines the reader counts.
func quotedField(r *csv.Reader, lines [][]byte, field int) bool {
	line, col := r.FieldPos(field)
	if line < 1 || line > len(lines) {
		return false
	}
	raw := lines[line-1]
	return col >= 1 && col <= len(raw) && raw[col-1] == '"'
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// WriteExport writes messages as CSV with every field quoted, embedded
// quotes doubled and CRLF after each record.
func WriteExport(w io.Writer, messages []GeneratedMessage) error {
	var b strings.Builder
	b.WriteString(strings.Join(ExportHeader, ","))
	b.WriteString(recordEnd)
	for _, msg := range messages {
		b.WriteString(strings.Join([]string{
			quote(msg.Phone),
			quote(msg.Message),
			quote(msg.WhatsAppLink),
			quote(msg.TelegramLink),
		}, ","))
		b.WriteString(recordEnd)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

const recordEnd = "\r\n"

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// ExportFilename names an export after the template title and the date.
func ExportFilename(title string, now time.Time) string {
	return fmt.Sprintf("mensajes_%s_%s.csv", title, now.Format("2006-01-02"))
}
