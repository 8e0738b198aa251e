// Package format renders library records as human-readable text blocks.
//
// Each table has its own layout; tables without one fall back to a sorted
// "Field: value" listing. Every block ends with a separator line so that
// consecutive records stay readable in a terminal.
package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/shelf/internal/config"
	"github.com/roach88/shelf/internal/record"
)

// Separator closes every formatted record.
var Separator = strings.Repeat("-", 47)

const (
	notAvailable = "N/A"
	unknown      = "Unknown"
)

// Formatter writes one record to w.
type Formatter interface {
	Format(w io.Writer, rec record.Record) error
}

// FormatterFunc adapts a plain function to Formatter.
type FormatterFunc func(w io.Writer, rec record.Record) error

// Format calls f(w, rec).
func (f FormatterFunc) Format(w io.Writer, rec record.Record) error {
	return f(w, rec)
}

var byTable = map[string]Formatter{
	config.TableBooks:      FormatterFunc(Book),
	config.TableAuthors:    FormatterFunc(Author),
	config.TableEditions:   FormatterFunc(Edition),
	config.TablePublishers: FormatterFunc(Publisher),
	config.TableArtworks:   FormatterFunc(Artwork),
	config.TableReviews:    FormatterFunc(Review),
}

// For returns the formatter for table (any case), or Default.
func For(table string) Formatter {
	if f, ok := byTable[strings.ToUpper(table)]; ok {
		return f
	}
	return FormatterFunc(Default)
}

// All writes every record of recs with f.
func All(w io.Writer, f Formatter, recs []record.Record) error {
	for _, rec := range recs {
		if err := f.Format(w, rec); err != nil {
			return err
		}
	}
	return nil
}

// printer remembers the first write error so layouts can print line by
// line and check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) end() error {
	p.line("%s", Separator)
	return p.err
}

// field returns the text form of rec[name], or fallback when the field is
// missing, null, blank or an empty list.
func field(rec record.Record, name, fallback string) string {
	v := rec.Get(name)
	if record.IsBlank(v) {
		return fallback
	}
	if list, ok := v.(record.List); ok && len(list) == 0 {
		return fallback
	}
	return record.Text(v)
}

// spaced renders comma-separated strings with a space after each comma.
// Lists are already joined with ", ".
func spaced(rec record.Record, name string) string {
	v := rec.Get(name)
	if s, ok := v.(record.String); ok {
		if strings.TrimSpace(string(s)) == "" {
			return notAvailable
		}
		return strings.ReplaceAll(string(s), ",", ", ")
	}
	return field(rec, name, notAvailable)
}

func yesNo(rec record.Record, name string) string {
	if record.Truthy(rec.Get(name)) {
		return "Yes"
	}
	return "No"
}

// linkedName returns the Display Name of the record linked through name.
func linkedName(rec record.Record, name string) string {
	linked, ok := rec.Link(name)
	if !ok {
		return ""
	}
	return field(linked, "Display Name", "")
}

// Book formats a BOOKS record.
func Book(w io.Writer, book record.Record) error {
	p := &printer{w: w}
	p.line("%s (%s)", field(book, "Title", "Untitled"), field(book, "First Published", notAvailable))
	p.line("   Author(s): %s", field(book, "Author(s)", notAvailable))
	p.line("   Genre: %s", spaced(book, "Genre"))
	p.line("   Tags: %s", spaced(book, "Tags"))
	p.line("   Status: %s | Rating: %s", field(book, "Status", notAvailable), field(book, "Rating", notAvailable))
	p.line("   Owned: %s | Annotated: %s", yesNo(book, "Owned"), yesNo(book, "Annotated"))
	return p.end()
}

// Author formats an AUTHORS record.
func Author(w io.Writer, author record.Record) error {
	p := &printer{w: w}
	p.line("%s (%s)", field(author, "Name", unknown), field(author, "Pronouns", notAvailable))
	p.line("  Website: %s", field(author, "Website", notAvailable))
	p.line("  Notes: %s", field(author, "Notes", ""))
	return p.end()
}

// Edition formats an EDITIONS record. Citation and Notes are printed only
// when present.
func Edition(w io.Writer, ed record.Record) error {
	p := &printer{w: w}
	p.line("%s (%s)", field(ed, "Title", "Untitled"), field(ed, "Year", unknown))
	book := linkedName(ed, "Books")
	if book == "" {
		book = notAvailable
	}
	p.line("  Book: %s", book)
	p.line("  Publisher: %s (%s)", field(ed, "Publisher", notAvailable), field(ed, "City", notAvailable))
	p.line("  Language: %s | Pages: %s", field(ed, "Language", notAvailable), field(ed, "Pages", notAvailable))
	p.line("  ISBN: %s", field(ed, "ISBN", notAvailable))
	if citation := field(ed, "Citation (Cite Them Right)", ""); strings.TrimSpace(citation) != "" {
		p.line("  Citation: %s", citation)
	}
	if notes := ed.Get("Notes"); record.Truthy(notes) {
		p.line("  Notes: %s", record.Text(notes))
	}
	return p.end()
}

// Publisher formats a PUBLISHERS record.
func Publisher(w io.Writer, pub record.Record) error {
	p := &printer{w: w}
	p.line("%s (%s)", field(pub, "Publisher", unknown), field(pub, "Countries", notAvailable))
	for _, opt := range []struct{ label, name string }{
		{"Imprint of", "Imprint Of"},
		{"Website", "Website"},
		{"Notes", "Notes"},
	} {
		if v := pub.Get(opt.name); record.Truthy(v) {
			p.line("  %s: %s", opt.label, record.Text(v))
		}
	}
	p.line("  Editions Published: %s", field(pub, "Editions", "0"))
	return p.end()
}

// Artwork formats an ARTWORKS record.
func Artwork(w io.Writer, art record.Record) error {
	p := &printer{w: w}
	p.line("%s", field(art, "Title", "Untitled"))
	p.line("  Medium: %s | Date: %s", field(art, "Medium", unknown), field(art, "Date", unknown))
	related := linkedName(art, "Books")
	if related == "" {
		related = "None"
	}
	p.line("  Related to: %s", related)
	return p.end()
}

// Review formats a REVIEWS record.
func Review(w io.Writer, rev record.Record) error {
	p := &printer{w: w}
	p.line("%s", field(rev, "Title", "Untitled Review"))
	book := linkedName(rev, "Books")
	if book == "" {
		book = "None"
	}
	p.line("  Book: %s", book)
	p.line("  Date: %s", field(rev, "Review Date", unknown))
	p.line("  Location: %s | Published In: %s", field(rev, "Reviewed For", "Private"), field(rev, "Published In", notAvailable))
	if path := rev.Get("Review Path"); record.Truthy(path) {
		p.line("  Path: %s", record.Text(path))
	}
	return p.end()
}

// Default lists every field of rec in key order.
func Default(w io.Writer, rec record.Record) error {
	p := &printer{w: w}
	for _, key := range rec.Keys() {
		p.line("%s: %s", key, record.Text(rec[key]))
	}
	return p.end()
}
