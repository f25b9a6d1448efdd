package view

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/deltalens/internal/report"
)

// Controller owns the current report. It renders whenever the port's
// location changes and navigates by writing the port.
type Controller struct {
	port     Port
	data     *report.Data
	log      zerolog.Logger
	snap     *Snapshot
	err      error
	onRender []func(*Snapshot, error)
}

// NewController wires a controller to port. Call Start to render the first
// report.
func NewController(port Port, data *report.Data, log zerolog.Logger) *Controller {
	c := &Controller{port: port, data: data, log: log}
	port.OnChange(c.show)
	return c
}

// Start renders the current location. An empty location is replaced by the
// daily report, which arrives as an ordinary change.
func (c *Controller) Start() {
	c.show(c.port.Current())
}

// Navigate moves to m by setting the location.
func (c *Controller) Navigate(m report.Mode) {
	c.port.Set(m.Hash())
}

// Activate runs a cell's action against this controller.
func (c *Controller) Activate(cell report.Cell) {
	cell.Activate(c.Navigate)
}

// Snapshot returns the last successful render, or nil.
func (c *Controller) Snapshot() *Snapshot {
	return c.snap
}

// Err returns the error from the last render cycle, or nil if it succeeded.
func (c *Controller) Err() error {
	return c.err
}

// OnRender registers fn to run after every render cycle.
func (c *Controller) OnRender(fn func(*Snapshot, error)) {
	c.onRender = append(c.onRender, fn)
}

func (c *Controller) show(hash string) {
	if strings.TrimPrefix(hash, "#") == "" {
		c.port.Set(report.DefaultHash)
		return
	}

	snap, err := Build(c.data, hash)
	if err != nil {
		c.err = err
		c.log.Warn().Err(err).Str("hash", hash).Msg("render failed, keeping previous report")
	} else {
		snap.Context.Next = c.Navigate
		c.snap, c.err = snap, nil
		c.log.Debug().Str("hash", snap.Hash).Msg("rendered")
	}
	for _, fn := range c.onRender {
		fn(c.snap, c.err)
	}
}
