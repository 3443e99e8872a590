package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"martianoff/stjs/stjserr"
)

// diagPrinter writes diagnostics one per line, colored on a terminal.
type diagPrinter struct {
	w        io.Writer
	location *color.Color
	category *color.Color
}

func newDiagPrinter(w io.Writer) *diagPrinter {
	p := &diagPrinter{
		w:        w,
		location: color.New(color.Bold),
		category: color.New(color.FgRed, color.Bold),
	}
	if !isTerminal(w) {
		p.location.DisableColor()
		p.category.DisableColor()
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *diagPrinter) report(r *stjserr.Report) {
	for _, err := range r.Diagnostics() {
		p.print(err)
	}
}

func (p *diagPrinter) print(err error) {
	var d *stjserr.Diagnostic
	if errors.As(err, &d) {
		fmt.Fprintf(p.w, "%s: %s: %s\n", p.location.Sprint(d.Position()), p.category.Sprint(d.Type()), d.Message())
		return
	}
	var se stjserr.StjsError
	if errors.As(err, &se) {
		fmt.Fprintf(p.w, "%s: %v\n", p.category.Sprint(se.Type()), err)
		return
	}
	fmt.Fprintln(p.w, err)
}
