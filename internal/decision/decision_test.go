package decision

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
		want  []string
	}{
		{
			name:  "default banner",
			frame: Frame{Body: "Approve refund 7"},
			want:  []string{DefaultBanner, "Approve refund 7"},
		},
		{
			name:  "custom banner and preview",
			frame: Frame{Banner: "Confirm Action", Preview: "Preview text"},
			want:  []string{"Confirm Action", "Preview text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := NewPrompter(strings.NewReader(""), &out, false).Render(tt.frame)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Render() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out, false)
			got, err := p.Confirm(context.Background(), Frame{Body: "x"})
			if err != nil {
				t.Fatalf("Confirm() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Confirm?") {
				t.Errorf("prompt not written: %q", out.String())
			}
		})
	}
}

func TestRun(t *testing.T) {
	t.Run("confirmed runs action once", func(t *testing.T) {
		calls := 0
		p := NewPrompter(strings.NewReader("y\n"), &bytes.Buffer{}, false)
		err := p.Run(context.Background(), Frame{}, func(context.Context) error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if calls != 1 {
			t.Errorf("action calls = %d, want 1", calls)
		}
	})

	t.Run("cancelled skips action", func(t *testing.T) {
		p := NewPrompter(strings.NewReader("n\n"), &bytes.Buffer{}, false)
		err := p.Run(context.Background(), Frame{}, func(context.Context) error {
			t.Error("action should not run")
			return nil
		})
		if !errors.Is(err, ErrCancelled) {
			t.Errorf("Run() error = %v, want ErrCancelled", err)
		}
	})

	t.Run("assume yes does not prompt", func(t *testing.T) {
		var out bytes.Buffer
		p := NewPrompter(strings.NewReader(""), &out, true)
		ran := false
		if err := p.Run(context.Background(), Frame{}, func(context.Context) error {
			ran = true
			return nil
		}); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		if !ran {
			t.Error("action did not run")
		}
		if out.Len() != 0 {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("action error propagates", func(t *testing.T) {
		want := errors.New("Failed to process refund request")
		p := NewPrompter(nil, &bytes.Buffer{}, true)
		if err := p.Run(context.Background(), Frame{}, func(context.Context) error { return want }); err != want {
			t.Errorf("Run() error = %v, want %v", err, want)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p := NewPrompter(strings.NewReader("y\n"), &bytes.Buffer{}, false)
		if err := p.Run(ctx, Frame{}, func(context.Context) error { return nil }); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}
