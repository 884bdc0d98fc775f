package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"storefront-client/internal/model"
	"storefront-client/internal/viewmodel"
)

// printer renders rows as a table or the raw value as JSON.
type printer struct {
	out    io.Writer
	format string

	header lipgloss.Style
	cell   lipgloss.Style
	muted  lipgloss.Style
}

func newPrinter(out io.Writer, format string) *printer {
	r := lipgloss.NewRenderer(out)
	return &printer{
		out:    out,
		format: format,
		header: r.NewStyle().Bold(true).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (p *printer) json(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table prints rows, or v as JSON when -o json was given.
func (p *printer) table(v any, headers []string, rows [][]string) error {
	if p.format == "json" {
		return p.json(v)
	}
	if len(rows) == 0 {
		fmt.Fprintln(p.out, p.muted.Render("(none)"))
		return nil
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return p.cell
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(p.out, t.Render())
	return nil
}

// fields prints one record as key/value rows.
func (p *printer) fields(v any, kv ...string) error {
	rows := make([][]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		rows = append(rows, []string{kv[i], kv[i+1]})
	}
	return p.table(v, []string{"Field", "Value"}, rows)
}

func (p *printer) note(format string, args ...any) {
	if p.format == "json" {
		return
	}
	fmt.Fprintln(p.out, p.muted.Render(fmt.Sprintf(format, args...)))
}

// load runs a loader once and returns its data.
func load[T any](ctx context.Context, l *viewmodel.Loader[T]) (T, error) {
	defer l.Close()
	if err := l.Load(ctx); err != nil {
		var zero T
		return zero, err
	}
	return l.State().Data, nil
}

// loadDetail loads one record by id.
func loadDetail[T any](ctx context.Context, d *viewmodel.Detail[T], id string) (*T, error) {
	defer d.Close()
	if err := d.SetID(ctx, model.ID(id)); err != nil {
		return nil, err
	}
	rec := d.State().Data
	if rec == nil {
		return nil, fmt.Errorf("record %s not found", id)
	}
	return rec, nil
}

func money(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return model.FormatMoney(*d)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
