package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/diagnostic"
)

// Printer provides methods for printing UI components to a writer.
// This is the primary way non-interactive commands output styled content.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = ClampWidth(width)
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
	p.Newline()
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Detail) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintPlans prints every plan card
func (p *Printer) PrintPlans(c *catalog.Catalog) {
	p.Println(RenderPlans(c, p.width))
}

// PrintCoffee prints the coffee of the month
func (p *Printer) PrintCoffee(c *catalog.Catalog) {
	p.Println(RenderCoffee(c.MonthlyCoffee, p.width))
}

// PrintTestimonials prints every testimonial card
func (p *Printer) PrintTestimonials(c *catalog.Catalog) {
	for _, t := range c.Testimonials {
		p.Println(RenderTestimonial(t, p.width))
	}
}

// PrintFAQ prints the FAQ. With no ids every answer is shown; otherwise
// only the listed entries are printed, expanded.
func (p *Printer) PrintFAQ(c *catalog.Catalog, ids ...int) {
	entries := c.FAQ
	open := make(map[int]bool)
	if len(ids) == 0 {
		for _, e := range entries {
			open[e.ID] = true
		}
	} else {
		entries = nil
		for _, id := range ids {
			if e, ok := c.FAQEntry(id); ok {
				entries = append(entries, e)
				open[id] = true
			}
		}
	}
	p.Println(RenderFAQ(entries, open, p.width))
}

// PrintRecommendation prints the diagnostic result
func (p *Printer) PrintRecommendation(rec diagnostic.Recommendation) {
	p.Println(RenderRecommendation(rec, p.width))
}

// PrintContactInfo prints the support contact details
func (p *Printer) PrintContactInfo(c *catalog.Catalog) {
	p.Println(RenderContactInfo(c.Contact))
}
