// Package bulk generates one message per row of an uploaded CSV file. A
// Session walks the operator through upload, column mapping, preview and the
// final results, one step at a time.
package bulk

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/keyboxhn/keybox/internal/links"
	"github.com/keyboxhn/keybox/internal/render"
)

// PreviewSize is the number of rows rendered by the preview step.
const PreviewSize = 5

type Step string

const (
	StepUpload  Step = "upload"
	StepMapping Step = "mapping"
	StepPreview Step = "preview"
	StepResults Step = "results"
)

var (
	ErrInvalidStep       = errors.New("operation not allowed in the current step")
	ErrIncompleteMapping = errors.New("column mapping is incomplete")
	ErrUnknownVariable   = errors.New("variable is not used by the template")
	ErrNoPreviousStep    = errors.New("already at the first step")
)

// Mapping binds a template variable to a column of the uploaded file.
type Mapping struct {
	Variable string `json:"variable"`
	Column   string `json:"column"`
}

// GeneratedMessage is one rendered row.
type GeneratedMessage struct {
	Phone        string `json:"phone"`
	Message      string `json:"message"`
	WhatsAppLink string `json:"whatsapp_link"`
	TelegramLink string `json:"telegram_link"`
}

type Session struct {
	ID            string             `json:"id"`
	TemplateID    string             `json:"template_id"`
	TemplateTitle string             `json:"template_title"`
	TemplateBody  string             `json:"template_body"`
	Variables     []string           `json:"variables"`
	Step          Step               `json:"step"`
	File          *FileData          `json:"file,omitempty"`
	PhoneColumn   string             `json:"phone_column"`
	Mappings      []Mapping          `json:"mappings"`
	Messages      []GeneratedMessage `json:"messages"`
	CreatedAt     time.Time          `json:"created_at"`
}

func NewSession(id, templateID, title, body string) *Session {
	return &Session{
		ID:            id,
		TemplateID:    templateID,
		TemplateTitle: title,
		TemplateBody:  body,
		Variables:     render.Extract(body),
		Step:          StepUpload,
		Mappings:      []Mapping{},
		Messages:      []GeneratedMessage{},
		CreatedAt:     time.Now().UTC(),
	}
}

func (s *Session) require(step Step, action string) error {
	if s.Step != step {
		return fmt.Errorf("%w: cannot %s during %s", ErrInvalidStep, action, s.Step)
	}
	return nil
}

// Upload parses the data file and moves to the mapping step. On error the
// session stays in the upload step.
func (s *Session) Upload(filename string, content []byte) error {
	if err := s.require(StepUpload, "upload a file"); err != nil {
		return err
	}

	data, err := ParseFile(filename, content)
	if err != nil {
		return err
	}

	s.File = data
	s.PhoneColumn = ""
	s.Mappings = make([]Mapping, len(s.Variables))
	for i, v := range s.Variables {
		s.Mappings[i] = Mapping{Variable: v}
	}
	s.Messages = []GeneratedMessage{}
	s.Step = StepMapping
	return nil
}

// SetMapping records the operator's column choices. Variables absent from
// columns keep their previous choice. The choices are checked when leaving
// the mapping step.
func (s *Session) SetMapping(phoneColumn string, columns map[string]string) error {
	if err := s.require(StepMapping, "change the mapping"); err != nil {
		return err
	}

	for variable := range columns {
		if s.mappingIndex(variable) == -1 {
			return fmt.Errorf("%w: %q", ErrUnknownVariable, variable)
		}
	}

	s.PhoneColumn = phoneColumn
	for i, m := range s.Mappings {
		if column, ok := columns[m.Variable]; ok {
			s.Mappings[i].Column = column
		}
	}
	return nil
}

func (s *Session) mappingIndex(variable string) int {
	for i, m := range s.Mappings {
		if m.Variable == variable {
			return i
		}
	}
	return -1
}

// CheckMapping reports whether the mapping step may be left: a phone column
// is selected and every variable is mapped to an existing column.
func (s *Session) CheckMapping() error {
	if s.File == nil {
		return fmt.Errorf("%w: no file uploaded", ErrIncompleteMapping)
	}

	var problems []string
	if s.PhoneColumn == "" {
		problems = append(problems, "phone column is not selected")
	} else if s.File.ColumnIndex(s.PhoneColumn) == -1 {
		problems = append(problems, fmt.Sprintf("phone column %q not found", s.PhoneColumn))
	}

	for _, m := range s.Mappings {
		switch {
		case m.Column == "":
			problems = append(problems, fmt.Sprintf("variable %q is not mapped", m.Variable))
		case s.File.ColumnIndex(m.Column) == -1:
			problems = append(problems, fmt.Sprintf("column %q for variable %q not found", m.Column, m.Variable))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteMapping, strings.Join(problems, "; "))
	}
	return nil
}

// Preview renders the first rows and moves to the preview step.
func (s *Session) Preview() ([]GeneratedMessage, error) {
	if err := s.require(StepMapping, "preview"); err != nil {
		return nil, err
	}
	if err := s.CheckMapping(); err != nil {
		return nil, err
	}

	s.Messages = s.generate(PreviewSize)
	s.Step = StepPreview
	return s.Messages, nil
}

// GenerateAll renders every row and moves to the results step.
func (s *Session) GenerateAll() ([]GeneratedMessage, error) {
	if err := s.require(StepPreview, "generate all messages"); err != nil {
		return nil, err
	}
	if err := s.CheckMapping(); err != nil {
		return nil, err
	}

	s.Messages = s.generate(len(s.File.Rows))
	s.Step = StepResults
	return s.Messages, nil
}

// Back returns to the previous step. Leaving the mapping step discards the
// uploaded file.
func (s *Session) Back() error {
	switch s.Step {
	case StepResults:
		s.Messages = s.generate(PreviewSize)
		s.Step = StepPreview
	case StepPreview:
		s.Messages = []GeneratedMessage{}
		s.Step = StepMapping
	case StepMapping:
		s.File = nil
		s.PhoneColumn = ""
		s.Mappings = []Mapping{}
		s.Messages = []GeneratedMessage{}
		s.Step = StepUpload
	default:
		return ErrNoPreviousStep
	}
	return nil
}

// Export writes the full batch. Only available once every row is rendered.
func (s *Session) Export(w io.Writer) error {
	if err := s.require(StepResults, "export"); err != nil {
		return err
	}
	return WriteExport(w, s.Messages)
}

// TotalRows is the number of data rows in the uploaded file.
func (s *Session) TotalRows() int {
	if s.File == nil {
		return 0
	}
	return len(s.File.Rows)
}

func (s *Session) generate(limit int) []GeneratedMessage {
	rows := s.File.Rows
	if limit < len(rows) {
		rows = rows[:limit]
	}

	phoneIdx := s.File.ColumnIndex(s.PhoneColumn)
	columns := make(map[string]int, len(s.Mappings))
	for _, m := range s.Mappings {
		columns[m.Variable] = s.File.ColumnIndex(m.Column)
	}

	out := make([]GeneratedMessage, 0, len(rows))
	for _, row := range rows {
		out = append(out, RenderRow(s.TemplateBody, row, phoneIdx, columns))
	}
	return out
}

// RenderRow renders body for one data row. columns maps each variable to its
// cell index; missing cells count as empty values. Line breaks in the message
// are normalized to \n, the form a CSV reader returns them in.
func RenderRow(body string, row []string, phoneIdx int, columns map[string]int) GeneratedMessage {
	bindings := make(render.Bindings, len(columns))
	for variable, idx := range columns {
		bindings[variable] = render.Scalar(cell(row, idx))
	}

	message := strings.ReplaceAll(render.Render(body, bindings), "\r\n", "\n")
	phone := cell(row, phoneIdx)
	set := links.For(links.Digits(phone), message)

	return GeneratedMessage{
		Phone:        phone,
		Message:      message,
		WhatsAppLink: set.WhatsApp,
		TelegramLink: set.Telegram,
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
