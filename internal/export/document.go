package export

import (
	"encoding/csv"
	"strings"
)

// document accumulates the sectioned CSV text of one export. Section
// headers are raw lines; table rows go through encoding/csv so fields
// containing commas, quotes, or newlines get RFC-4180 quoting.
type document struct {
	b strings.Builder
	w *csv.Writer
}

func newDocument() *document {
	d := &document{}
	d.w = csv.NewWriter(&d.b)
	return d
}

// section starts a new named section.
func (d *document) section(name string) {
	d.w.Flush()
	d.b.WriteString("=== " + name + " ===\n")
}

// row appends one CSV row.
func (d *document) row(fields ...string) {
	_ = d.w.Write(fields)
	d.w.Flush()
}

// blank separates sub-tables and sections.
func (d *document) blank() {
	d.w.Flush()
	d.b.WriteString("\n")
}

// placeholder closes a section whose data is absent or unreadable.
func (d *document) placeholder() {
	d.row(noDataPlaceholder)
	d.blank()
}

func (d *document) bytes() []byte {
	d.w.Flush()
	return []byte(d.b.String())
}
