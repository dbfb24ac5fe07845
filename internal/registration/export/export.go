// Package export renders registrations as the semicolon-delimited CSV that HR
// opens in a spreadsheet.
package export

import (
	"bytes"
	"strings"
	"time"

	"eventreg/internal/registration/models"
)

// BOM lets spreadsheet tools detect UTF-8.
const BOM = "\ufeff"

// Header is the fixed column row. It is written unquoted.
var Header = []string{
	"Nome Completo",
	"E-mail",
	"Departamento",
	"Nível Automação",
	"Acessibilidade",
	"Detalhe Acessibilidade",
	"Dia Participação",
	"Observações",
	"Data Criação",
}

const (
	delimiter       = ";"
	rowSeparator    = "\n"
	createdAtLayout = "02/01/2006 15:04"
	fileNameLayout  = "2006-01-02"
)

// Encoder is stateless after construction and safe for concurrent use.
type Encoder struct {
	location     *time.Location
	legacyQuotes bool
}

type Option func(*Encoder)

// WithLocation sets the zone creation timestamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(e *Encoder) {
		if loc != nil {
			e.location = loc
		}
	}
}

// WithLegacyQuoting wraps values in quotes without escaping embedded quotes,
// reproducing older exports byte for byte. A quote inside a value then breaks
// the column boundary.
func WithLegacyQuoting() Option {
	return func(e *Encoder) {
		e.legacyQuotes = true
	}
}

// New returns an encoder rendering timestamps in America/Sao_Paulo unless
// overridden. It falls back to UTC when the zone database is unavailable.
func New(opts ...Option) *Encoder {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.UTC
	}
	e := &Encoder{location: loc}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode renders the BOM, the header and one quoted row per record, rows
// separated by "\n" with no trailing newline.
func (e *Encoder) Encode(records []*models.Registration) []byte {
	var buf bytes.Buffer
	buf.WriteString(BOM)
	buf.WriteString(strings.Join(Header, delimiter))

	for _, r := range records {
		buf.WriteString(rowSeparator)
		for i, cell := range e.row(r) {
			if i > 0 {
				buf.WriteString(delimiter)
			}
			buf.WriteString(e.quote(cell))
		}
	}
	return buf.Bytes()
}

func (e *Encoder) row(r *models.Registration) []string {
	return []string{
		r.FullName,
		r.CorporateEmail,
		r.Department,
		r.AutomationLevel,
		yesNo(r.NeedsAccessibility),
		deref(r.AccessibilityDetail),
		r.ParticipationDay.Display(),
		deref(r.Notes),
		r.CreatedAt.In(e.location).Format(createdAtLayout),
	}
}

func (e *Encoder) quote(cell string) string {
	if !e.legacyQuotes {
		cell = strings.ReplaceAll(cell, `"`, `""`)
	}
	return `"` + cell + `"`
}

// FileName names an export produced on now's calendar date.
func FileName(now time.Time) string {
	return "inscricoes_" + now.Format(fileNameLayout) + ".csv"
}

func yesNo(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
