package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/muesli/termenv"
)

var ColorOptions = []string{"auto", "standard", "256", "truecolor", "windows", "no"}

// ParseColor maps a --color option to a terminal colour profile.
func ParseColor(option string, w io.Writer) (termenv.Profile, error) {
	switch option {
	case "", "auto":
		return termenv.NewOutput(w).EnvColorProfile(), nil
	case "standard", "windows":
		return termenv.ANSI, nil
	case "256":
		return termenv.ANSI256, nil
	case "truecolor":
		return termenv.TrueColor, nil
	case "no":
		return termenv.Ascii, nil
	default:
		return termenv.Ascii, fmt.Errorf("invalid color option %q; expected one of %s", option, strings.Join(ColorOptions, "|"))
	}
}

var (
	colorTitle  = lipgloss.Color("#2196F3")
	colorKey    = lipgloss.Color("#e57373")
	colorValue  = lipgloss.Color("#8BC34A")
	colorMuted  = lipgloss.Color("#6c7a89")
	colorLeader = lipgloss.Color("#FFC107")
	colorError  = lipgloss.Color("#e53935")
	colorOK     = lipgloss.Color("#43a047")
)

type Renderer struct {
	w  io.Writer
	lr *lipgloss.Renderer

	Title  lipgloss.Style
	Header lipgloss.Style
	Key    lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Leader lipgloss.Style
	Error  lipgloss.Style
	OK     lipgloss.Style
	Border lipgloss.Style
}

func New(w io.Writer, color string) (*Renderer, error) {
	profile, err := ParseColor(color, w)
	if err != nil {
		return nil, err
	}
	lr := lipgloss.NewRenderer(w)
	lr.SetColorProfile(profile)

	return &Renderer{
		w:      w,
		lr:     lr,
		Title:  lr.NewStyle().Bold(true).Foreground(colorTitle),
		Header: lr.NewStyle().Bold(true).Padding(0, 1),
		Key:    lr.NewStyle().Foreground(colorKey),
		Value:  lr.NewStyle().Foreground(colorValue),
		Muted:  lr.NewStyle().Foreground(colorMuted),
		Leader: lr.NewStyle().Bold(true).Foreground(colorLeader),
		Error:  lr.NewStyle().Bold(true).Foreground(colorError),
		OK:     lr.NewStyle().Bold(true).Foreground(colorOK),
		Border: lr.NewStyle().Foreground(colorMuted),
	}, nil
}

// Plain renders without colour; used in tests and when writing to files.
func Plain(w io.Writer) *Renderer {
	r, _ := New(w, "no")
	return r
}

func (r *Renderer) Writer() io.Writer {
	return r.w
}

func (r *Renderer) Table(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.Header
			}
			return r.lr.NewStyle().Padding(0, 1)
		})
}

// Titled renders a table with a title line above it.
func (r *Renderer) Titled(title string, t fmt.Stringer) string {
	return lipgloss.JoinVertical(lipgloss.Center, r.Title.Render(title), t.String())
}

// Databag renders a key/value mapping sorted by key. Empty bags render as <empty>.
func (r *Renderer) Databag(data map[string]string) string {
	if len(data) == 0 {
		return r.Muted.Render("<empty>")
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).BorderBottom(false).BorderLeft(false).BorderRight(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return r.Key
			}
			return r.Value
		})
	for _, k := range keys {
		t.Row(k, data[k])
	}
	return t.String()
}

// Tree renders root with its children, each child optionally holding leaves.
func (r *Renderer) Tree(root string, children []Branch) string {
	t := tree.Root(r.Title.Render(root)).EnumeratorStyle(r.Border)
	for _, child := range children {
		if len(child.Leaves) == 0 {
			t.Child(child.Name)
			continue
		}
		sub := tree.Root(child.Name)
		for _, leaf := range child.Leaves {
			sub.Child(leaf)
		}
		t.Child(sub)
	}
	return t.String()
}

type Branch struct {
	Name   string
	Leaves []string
}

func (r *Renderer) Println(s string) {
	fmt.Fprintln(r.w, s)
}
