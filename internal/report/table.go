package report

import "strings"

// Row is an ordered set of named fields.
type Row struct {
	names []string
	cells map[string]Cell
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{cells: make(map[string]Cell)}
}

// Set adds or replaces a field. v may be a Cell or a plain value.
func (r *Row) Set(name string, v any) *Row {
	if _, ok := r.cells[name]; !ok {
		r.names = append(r.names, name)
	}
	r.cells[name] = Scalar(v)
	return r
}

// Get returns the field, or a blank cell when it is absent.
func (r *Row) Get(name string) Cell {
	return r.cells[name]
}

// Names returns the field names in the order they were first set.
func (r *Row) Names() []string {
	return r.names
}

// Table is a finished grid plus its CSV mirror.
type Table struct {
	Columns  []string
	Rows     [][]Cell
	Download string
	csv      strings.Builder
}

// CSV returns the header and body lines written so far.
func (t *Table) CSV() string {
	return t.csv.String()
}

// TableWriter renders rows into a Table and keeps the CSV text in lockstep.
// The column set is fixed by the first row: the explicit columns if given,
// else that row's own field order. Fields outside the set are dropped and
// missing ones render blank.
type TableWriter struct {
	root     *Element
	columns  []string
	table    *Table
	download string
}

// NewTableWriter returns a writer that appends its table to root on the
// first row.
func NewTableWriter(root *Element, columns ...string) *TableWriter {
	return &TableWriter{root: root, columns: columns}
}

// WriteRow renders one row, writing the header first when needed.
func (w *TableWriter) WriteRow(row *Row) {
	if w.table == nil {
		if len(w.columns) == 0 {
			w.columns = append([]string(nil), row.Names()...)
		}
		w.table = &Table{Columns: w.columns, Download: w.download}
		w.writeCSVLine(w.columns)
		if w.root != nil {
			w.root.Append(w.table)
		}
	}

	cells := make([]Cell, len(w.columns))
	text := make([]string, len(w.columns))
	for i, name := range w.columns {
		c := row.Get(name)
		cells[i] = c
		text[i] = c.String()
	}
	w.table.Rows = append(w.table.Rows, cells)
	w.writeCSVLine(text)
}

// AddDownload offers the table's CSV under name.
func (w *TableWriter) AddDownload(name string) {
	w.download = name
	if w.table != nil {
		w.table.Download = name
	}
}

// CSV returns the CSV text written so far.
func (w *TableWriter) CSV() string {
	if w.table == nil {
		return ""
	}
	return w.table.CSV()
}

// Table returns the table, or nil before the first row.
func (w *TableWriter) Table() *Table {
	return w.table
}

func (w *TableWriter) writeCSVLine(fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.table.csv.WriteByte(',')
		}
		w.table.csv.WriteString(EscapeCSV(f))
	}
	w.table.csv.WriteByte('\n')
}

var csvReplacer = strings.NewReplacer(
	",", ".",
	"\n", ".",
	"\r", ".",
	"\t", " ",
	`"`, "'",
)

// EscapeCSV makes a cell safe to place between commas. Delimiters are
// replaced rather than quoted: comma, newline and carriage return become a
// period, tab becomes a space and a double quote becomes a single quote.
func EscapeCSV(s string) string {
	return csvReplacer.Replace(s)
}
