package tail

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/canonical/jhack/internal/render"
	"github.com/canonical/jhack/pkg/types"
)

const (
	glyphVLine = "│"
	glyphCross = "┼"
	glyphLUp   = "┘"
	glyphLDown = "┐"
	glyphHLine = "─"
)

// cell is one event in a unit column.
type cell struct {
	event string
	// deferred counts how many times this event was deferred.
	deferred int
	// lanes are the deferral lines running through this row.
	lanes   string
	reemits bool
}

func (c *cell) String() string {
	switch {
	case c.deferred > 0:
		prefix := glyphHLine + glyphHLine
		if c.deferred > 9 {
			prefix = "∞" + glyphHLine
		} else if c.deferred > 1 {
			prefix = strconv.Itoa(c.deferred) + glyphHLine
		}
		return c.event + prefix + strings.ReplaceAll(c.lanes, glyphVLine, glyphCross) + glyphLUp
	case c.reemits:
		return c.event + glyphHLine + glyphHLine + c.lanes
	case c.lanes != "":
		return c.event + "  " + c.lanes
	default:
		return c.event
	}
}

type row struct {
	timestamp string
	cells     map[string]*cell
}

// Processor tracks charm events per unit from debug-log lines.
type Processor struct {
	targets       []types.Target
	columns       []string
	addNewTargets bool
	historyLength int

	rows     []*row
	counter  int
	tracked  []*EventLogMsg
	deferred map[string][]*DeferredLogMsg
}

func NewProcessor(targets []types.Target, addNewTargets bool, historyLength int) *Processor {
	p := &Processor{
		addNewTargets: addNewTargets,
		historyLength: historyLength,
		deferred:      map[string][]*DeferredLogMsg{},
	}
	for _, t := range targets {
		p.addTarget(t)
	}
	return p
}

func (p *Processor) addTarget(t types.Target) {
	for _, c := range p.columns {
		if c == t.UnitName() {
			return
		}
	}
	p.targets = append(p.targets, t)
	p.columns = append(p.columns, t.UnitName())
}

func (p *Processor) tracks(unit string) bool {
	for _, c := range p.columns {
		if c == unit {
			return true
		}
	}
	return false
}

// Events returns the emitted events seen so far, oldest first.
func (p *Processor) Events() []*EventLogMsg {
	return append([]*EventLogMsg(nil), p.tracked...)
}

// EventCount is the number of emitted events seen so far.
func (p *Processor) EventCount() int {
	return p.counter
}

func (p *Processor) Columns() []string {
	return append([]string(nil), p.columns...)
}

// Process consumes one log line and reports whether it was a charm event.
func (p *Processor) Process(line string) (bool, error) {
	line = strings.TrimSpace(line)

	if msg, ok := matchEmitted(line); ok {
		p.track(msg)
		p.displayEvent(msg, -1)
		return true, nil
	}
	if msg, ok := matchDeferred(line); ok {
		p.deferred[msg.Unit] = append(p.deferred[msg.Unit], msg)
		p.displayDeferred(msg)
		return true, nil
	}
	if msg, ok := matchReemitted(line); ok {
		idx, err := p.reemit(msg)
		if err != nil {
			return false, err
		}
		p.displayEvent(&msg.EventLogMsg, idx)
		return true, nil
	}
	return false, nil
}

func (p *Processor) track(msg *EventLogMsg) {
	p.counter++
	p.tracked = append(p.tracked, msg)

	if p.addNewTargets && !p.tracks(msg.Unit) {
		t, err := types.ParseTarget(msg.Unit)
		if err != nil {
			log.Warn().Err(err).Msgf("cannot track %s", msg.Unit)
			return
		}
		log.Info().Msgf("adding new unit %s", msg.Unit)
		p.addTarget(t)
	}
}

func (p *Processor) reemit(msg *DeferredLogMsg) (int, error) {
	queue := p.deferred[msg.Unit]
	for i, d := range queue {
		if sameEvent(d.Event, msg.Event) {
			p.deferred[msg.Unit] = append(queue[:i:i], queue[i+1:]...)
			return i, nil
		}
	}
	pending := make([]string, 0, len(queue))
	for _, d := range queue {
		pending = append(pending, d.Event)
	}
	return 0, fmt.Errorf("cannot reemit %s; no matching deferred event could be found in %v", msg.Event, pending)
}

func (p *Processor) displayEvent(msg *EventLogMsg, reemitIdx int) {
	if !p.tracks(msg.Unit) {
		log.Debug().Msgf("ignoring event %s on untracked unit %s", msg.Event, msg.Unit)
		return
	}

	pending := len(p.deferred[msg.Unit])
	c := &cell{event: msg.Event}
	if reemitIdx >= 0 {
		c.reemits = true
		var lanes strings.Builder
		for i := 0; i < pending; i++ {
			if i == reemitIdx {
				lanes.WriteString(glyphLDown)
			}
			if i > reemitIdx {
				lanes.WriteString(glyphCross)
			} else {
				lanes.WriteString(glyphVLine)
			}
		}
		if reemitIdx >= pending {
			lanes.WriteString(glyphLDown)
		}
		c.lanes = lanes.String()
	} else {
		c.lanes = strings.Repeat(glyphVLine, pending)
	}

	p.rows = append([]*row{{timestamp: msg.Timestamp, cells: map[string]*cell{msg.Unit: c}}}, p.rows...)
	if p.historyLength > 0 && len(p.rows) > p.historyLength {
		p.rows = p.rows[:p.historyLength]
	}
}

func (p *Processor) displayDeferred(msg *DeferredLogMsg) {
	for _, r := range p.rows {
		if c, ok := r.cells[msg.Unit]; ok {
			c.deferred++
			return
		}
	}
}

// Rows returns the table rows, newest first: timestamp then one cell per column.
func (p *Processor) Rows() [][]string {
	out := make([][]string, 0, len(p.rows))
	for _, r := range p.rows {
		line := []string{r.timestamp}
		for _, col := range p.columns {
			if c, ok := r.cells[col]; ok {
				line = append(line, c.String())
			} else {
				line = append(line, "")
			}
		}
		out = append(out, line)
	}
	return out
}

func (p *Processor) Render(r *render.Renderer) string {
	return r.Table(append([]string{"timestamp"}, p.columns...), p.Rows()).String()
}
