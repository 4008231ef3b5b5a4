// Copyright 2025 Terramate GmbH
// SPDX-License-Identifier: MPL-2.0

package printer

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/ipcrmdemo/ipcrmdemo-sdm-sub000/errors"
)

var (
	bold       = color.New(color.Bold).Sprint
	boldYellow = color.New(color.Bold, color.FgYellow).Sprint
	boldRed    = color.New(color.Bold, color.FgRed).Sprint
	boldGreen  = color.New(color.Bold, color.FgGreen).Sprint
	boldCyan   = color.New(color.Bold, color.FgCyan).Sprint
	faint      = color.New(color.Faint).Sprint
)

var (
	// Stdout is the default stdout printer.
	Stdout = NewPrinter(os.Stdout)

	// Stderr is the default stderr printer.
	Stderr = NewPrinter(os.Stderr)
)

// Printer encapsulates an io.Writer
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new Printer with the provided io.Writer e.g.: stdio,
// stderr, file etc.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w}
}

// Println prints a message to the io.Writer
func (p *Printer) Println(msg string) {
	fmt.Fprintln(p.w, msg)
}

// Warnln prints a message with a "Warning:" prefix. The prefix is printed in
// the boldYellow style.
func (p *Printer) Warnln(title string) {
	fmt.Fprintln(p.w, boldYellow("Warning:"), bold(title))
}

// ErrorWithDetailsln prints an error with a title and the underlying error. If
// the error contains multiple error items, each error is printed with a `>`
// prefix.
// e.g.:
// Error: loading registration
// > registration schema error: vars[0]: name must not be empty
// > registration schema error: workspace "a b" must not contain whitespace
func (p *Printer) ErrorWithDetailsln(title string, err error) {
	p.Errorln(title)

	for _, item := range toStrings(err) {
		fmt.Fprintln(p.w, boldRed(">"), item)
	}
}

// Errorln prints a message with a "Error:" prefix. The prefix is printed in
// the boldRed style.
func (p *Printer) Errorln(title string) {
	fmt.Fprintln(p.w, boldRed("Error:"), bold(title))
}

// Successln prints a message in the boldGreen style
func (p *Printer) Successln(msg string) {
	fmt.Fprintln(p.w, boldGreen(msg))
}

// Progressln prints a progress label prefixed by its time.
func (p *Printer) Progressln(label string, at time.Time) {
	fmt.Fprintln(p.w, faint(at.Format(time.TimeOnly)), boldCyan(label))
}

// Linkln prints a labeled link.
func (p *Printer) Linkln(label, url string) {
	fmt.Fprintf(p.w, "%s %s\n", bold(label+":"), url)
}

// toStrings converts an error into a list of strings where each string
// represents an individual error.
func toStrings(err error) []string {
	if err == nil {
		return nil
	}
	var list *errors.List
	if !errors.As(err, &list) {
		return []string{err.Error()}
	}
	errs := list.Unwrap()
	res := make([]string, 0, len(errs))
	for _, item := range errs {
		res = append(res, item.Error())
	}
	return res
}
