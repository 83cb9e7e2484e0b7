// Package output formats what the eventspot command prints.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Printer writes notices to the terminal. It satisfies booking.Notifier.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// UseColors is false when NO_COLOR is set or the terminal is dumb.
func UseColors() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb" && !color.NoColor
}

func NewPrinter(out, err io.Writer, useColors bool) *Printer {
	return &Printer{out: out, err: err, useColors: useColors}
}

func (p *Printer) Out() io.Writer { return p.out }

func (p *Printer) Info(msg string) {
	if p.useColors {
		color.New(color.FgCyan).Fprintln(p.out, msg)
		return
	}
	fmt.Fprintln(p.out, msg)
}

func (p *Printer) Success(msg string) {
	if p.useColors {
		color.New(color.FgGreen).Fprintln(p.out, "✓ "+msg)
		return
	}
	fmt.Fprintln(p.out, "[OK] "+msg)
}

func (p *Printer) Warning(msg string) {
	if p.useColors {
		color.New(color.FgYellow).Fprintln(p.err, "⚠ "+msg)
		return
	}
	fmt.Fprintln(p.err, "[WARN] "+msg)
}

func (p *Printer) Error(msg string) {
	if p.useColors {
		color.New(color.FgRed).Fprintln(p.err, "✗ "+msg)
		return
	}
	fmt.Fprintln(p.err, "[ERROR] "+msg)
}

func (p *Printer) Print(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) Header(title string) {
	if p.useColors {
		color.New(color.FgWhite, color.Bold).Fprintf(p.out, "\n%s\n", title)
		fmt.Fprintln(p.out, strings.Repeat("─", len([]rune(title))))
		return
	}
	fmt.Fprintf(p.out, "\n%s\n%s\n", title, strings.Repeat("-", len([]rune(title))))
}

// Status colours a moderation or attempt status.
func (p *Printer) Status(status string) string {
	if !p.useColors {
		return status
	}
	switch status {
	case "approved", "booked", "verified", "admin":
		return color.GreenString(status)
	case "disapproved", "payment_failed", "verify_failed", "booking_failed", "error":
		return color.RedString(status)
	case "pending", "order_created":
		return color.YellowString(status)
	}
	return status
}

func (p *Printer) Bold(text string) string {
	if p.useColors {
		return color.New(color.Bold).Sprint(text)
	}
	return text
}
