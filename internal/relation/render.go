package relation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/canonical/jhack/internal/render"
)

const (
	Title         = "relation data v0.3"
	watchInterval = 1500 * time.Millisecond
	clearScreen   = "\033[H\033[2J"
)

// Render draws the databags of a relation as a table.
func Render(r *render.Renderer, data *RelationData, hideEmpty bool) string {
	headers := []string{fmt.Sprintf("relation (id: %d)", data.RelationID)}
	for _, e := range data.Entities {
		headers = append(headers, e.App)
	}

	row := func(title string, cell func(e *AppRelationData) string) []string {
		out := []string{title}
		for _, e := range data.Entities {
			out = append(out, cell(e))
		}
		return out
	}

	rows := [][]string{
		row("relation name", func(e *AppRelationData) string { return e.Endpoint }),
		row("interface", func(e *AppRelationData) string { return e.Meta.Interface }),
		row("leader unit", func(e *AppRelationData) string { return strconv.Itoa(e.Meta.LeaderID) }),
	}
	if data.Peer {
		rows = append(rows, []string{"type", "peer"})
	}
	rows = append(rows, row("application data", func(e *AppRelationData) string {
		return databag(r, "", e.AppData, false, hideEmpty)
	}))

	unitCells := row("unit data", func(e *AppRelationData) string {
		var bags []string
		for _, id := range e.UnitIDs() {
			bag := databag(r, fmt.Sprintf("%s/%d", e.App, id), e.UnitsData[id], id == e.Meta.LeaderID, hideEmpty)
			if bag != "" {
				bags = append(bags, bag)
			}
		}
		return lipgloss.JoinVertical(lipgloss.Left, bags...)
	})
	for _, cell := range unitCells[1:] {
		if cell != "" {
			rows = append(rows, unitCells)
			break
		}
	}

	return r.Titled(Title, r.Table(headers, rows))
}

func databag(r *render.Renderer, title string, data map[string]string, leader, hideEmpty bool) string {
	if len(data) == 0 && hideEmpty {
		return ""
	}
	body := r.Databag(data)
	if title == "" {
		return body
	}
	if leader {
		return lipgloss.JoinVertical(lipgloss.Left, r.Leader.Render(title+"*"), body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, body)
}

// Show prints the relation once, or keeps redrawing it until ctx ends when watch is set.
func (s *Service) Show(ctx context.Context, r *render.Renderer, opts *Options, watch bool) error {
	for {
		start := time.Now()
		data, err := s.Get(ctx, opts)
		if errors.Is(err, ErrNoRelations) {
			r.Println("No relations found.")
			return nil
		}
		if err != nil {
			return err
		}
		out := Render(r, data, opts.HideEmpty)

		if !watch {
			r.Println(out)
			return nil
		}

		if elapsed := time.Since(start); elapsed < watchInterval {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(watchInterval - elapsed):
			}
		}
		s.units.Reset()
		fmt.Fprint(r.Writer(), clearScreen)
		r.Println(out)
	}
}
