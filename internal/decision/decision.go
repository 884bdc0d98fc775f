// Package decision gates permanent operational actions (refund verdicts,
// reimbursement status changes, shipment edits) behind an explicit
// confirmation step.
package decision

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultBanner is shown when a Frame carries no banner of its own.
const DefaultBanner = "You are about to make a permanent operational decision"

// ErrCancelled is returned by Run when the user declines.
var ErrCancelled = errors.New("decision cancelled")

// Frame describes one pending decision.
type Frame struct {
	Banner  string
	Body    string
	Preview string
}

// Prompter renders frames to Out and reads the answer from In.
// AssumeYes confirms without prompting (the CLI --yes flag).
type Prompter struct {
	In        io.Reader
	Out       io.Writer
	AssumeYes bool

	reader *bufio.Reader
	styles styles
}

type styles struct {
	banner  lipgloss.Style
	preview lipgloss.Style
	yes     lipgloss.Style
	no      lipgloss.Style
}

// NewPrompter builds a Prompter. Styling follows the color profile of out,
// so plain writers get plain text.
func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	r := lipgloss.NewRenderer(out)
	return &Prompter{
		In:        in,
		Out:       out,
		AssumeYes: assumeYes,
		reader:    bufio.NewReader(in),
		styles: styles{
			banner:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
			preview: r.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2),
			yes:     r.NewStyle().Foreground(lipgloss.Color("2")),
			no:      r.NewStyle().Foreground(lipgloss.Color("1")),
		},
	}
}

// Render returns the text shown for f.
func (p *Prompter) Render(f Frame) string {
	banner := f.Banner
	if banner == "" {
		banner = DefaultBanner
	}

	var b strings.Builder
	b.WriteString(p.styles.banner.Render(banner))
	b.WriteString("\n")
	if f.Body != "" {
		b.WriteString(f.Body)
		b.WriteString("\n")
	}
	if f.Preview != "" {
		b.WriteString(p.styles.preview.Render(f.Preview))
		b.WriteString("\n")
	}
	return b.String()
}

// Confirm shows f and waits for y/yes. Anything else, including EOF, is a
// cancel. ctx cancellation is checked before prompting only; a blocked read
// on a terminal cannot be interrupted.
func (p *Prompter) Confirm(ctx context.Context, f Frame) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if p.AssumeYes {
		return true, nil
	}

	fmt.Fprint(p.Out, p.Render(f))
	fmt.Fprintf(p.Out, "Confirm? %s / %s: ", p.styles.yes.Render("(y)"), p.styles.no.Render("(n)"))

	answer, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// Run executes action only after confirmation. A declined frame returns
// ErrCancelled and action is never called.
func (p *Prompter) Run(ctx context.Context, f Frame, action func(ctx context.Context) error) error {
	ok, err := p.Confirm(ctx, f)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return action(ctx)
}
