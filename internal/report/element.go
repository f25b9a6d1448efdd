package report

// Block is one piece of rendered page content.
type Block interface {
	block()
}

// Heading is a section title.
type Heading struct {
	Text string
}

// Text is a paragraph.
type Text struct {
	Text string
}

// Pre is preformatted text, such as an indented JSON dump.
type Pre struct {
	Text string
}

// Button is a standalone navigate control.
type Button struct {
	Cell Cell
}

// Panel groups a titled sub-document.
type Panel struct {
	Title string
	Body  *Element
}

func (Heading) block() {}
func (Text) block()    {}
func (Pre) block()     {}
func (Button) block()  {}
func (Panel) block()   {}
func (*Table) block()  {}

// Element is an ordered document that reports render into and front ends
// draw from.
type Element struct {
	Blocks []Block
}

// NewElement returns an empty document.
func NewElement() *Element {
	return &Element{}
}

// Append adds a block.
func (e *Element) Append(b Block) {
	e.Blocks = append(e.Blocks, b)
}

// Clear drops all blocks.
func (e *Element) Clear() {
	e.Blocks = nil
}

// AddHeading appends a heading.
func (e *Element) AddHeading(text string) {
	e.Append(Heading{Text: text})
}

// AddText appends a paragraph.
func (e *Element) AddText(text string) {
	e.Append(Text{Text: text})
}

// AddPre appends preformatted text.
func (e *Element) AddPre(text string) {
	e.Append(Pre{Text: text})
}

// AddButton appends a navigate button.
func (e *Element) AddButton(label string, target func() Mode) {
	e.Append(Button{Cell: Clickable(label, target)})
}

// AddPanel appends a titled panel and returns its body.
func (e *Element) AddPanel(title string) *Element {
	body := NewElement()
	e.Append(Panel{Title: title, Body: body})
	return body
}

// Tables returns every table in document order, panels included.
func (e *Element) Tables() []*Table {
	var out []*Table
	e.walk(func(b Block) {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	})
	return out
}

// Links returns every interactive cell in document order.
func (e *Element) Links() []Cell {
	var out []Cell
	e.walk(func(b Block) {
		switch b := b.(type) {
		case Button:
			out = append(out, b.Cell)
		case *Table:
			for _, row := range b.Rows {
				for _, c := range row {
					if c.Interactive() {
						out = append(out, c)
					}
				}
			}
		}
	})
	return out
}

func (e *Element) walk(fn func(Block)) {
	for _, b := range e.Blocks {
		fn(b)
		if p, ok := b.(Panel); ok && p.Body != nil {
			p.Body.walk(fn)
		}
	}
}
