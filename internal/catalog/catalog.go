package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the catalog document version this package understands.
const CurrentVersion = 1

//go:embed catalog.yaml
var embedded []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built into the binary. It panics if the
// embedded document is invalid, which the tests rule out.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load returns the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Validate checks the document for the mistakes that would break the
// storefront: unknown version, duplicate identifiers and out-of-range
// values. All problems are reported together.
func (c *Catalog) Validate() error {
	var errs []error

	if c.Version != CurrentVersion {
		errs = append(errs, fmt.Errorf("unsupported catalog version: %d (expected %d)", c.Version, CurrentVersion))
	}
	if len(c.Plans) == 0 {
		errs = append(errs, errors.New("at least one plan is required"))
	}

	plans := make(map[string]bool, len(c.Plans))
	for i, p := range c.Plans {
		switch {
		case p.ID == "":
			errs = append(errs, fmt.Errorf("plan %d: missing id", i))
		case plans[p.ID]:
			errs = append(errs, fmt.Errorf("plan %q: duplicate id", p.ID))
		}
		plans[p.ID] = true
		if p.OriginalPrice <= 0 || p.FirstMonthPrice <= 0 || p.FirstMonthPrice > p.OriginalPrice {
			errs = append(errs, fmt.Errorf("plan %q: invalid prices %d/%d", p.ID, p.FirstMonthPrice, p.OriginalPrice))
		}
	}

	for _, f := range c.MonthlyCoffee.Flavors {
		if f.Intensity < 0 || f.Intensity > 100 {
			errs = append(errs, fmt.Errorf("flavor %q: intensity %d out of range 0-100", f.Name, f.Intensity))
		}
	}

	tastes := make(map[string]bool, len(c.Beans))
	for _, b := range c.Beans {
		if tastes[b.Taste] {
			errs = append(errs, fmt.Errorf("bean %q: taste %q already used", b.ID, b.Taste))
		}
		tastes[b.Taste] = true
	}

	testimonials := make(map[int]bool, len(c.Testimonials))
	for _, t := range c.Testimonials {
		if testimonials[t.ID] {
			errs = append(errs, fmt.Errorf("testimonial %d: duplicate id", t.ID))
		}
		testimonials[t.ID] = true
		if t.Rating < 1 || t.Rating > 5 {
			errs = append(errs, fmt.Errorf("testimonial %d: rating %d out of range 1-5", t.ID, t.Rating))
		}
	}

	faq := make(map[int]bool, len(c.FAQ))
	for _, f := range c.FAQ {
		if faq[f.ID] {
			errs = append(errs, fmt.Errorf("faq %d: duplicate id", f.ID))
		}
		faq[f.ID] = true
	}

	return errors.Join(errs...)
}

// Plan returns the plan with the given id.
func (c *Catalog) Plan(id string) (Plan, bool) {
	for _, p := range c.Plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// FAQEntry returns the FAQ entry with the given id.
func (c *Catalog) FAQEntry(id int) (FAQEntry, bool) {
	for _, f := range c.FAQ {
		if f.ID == id {
			return f, true
		}
	}
	return FAQEntry{}, false
}

// BeanForTaste returns the bean recommended for a diagnostic taste answer.
func (c *Catalog) BeanForTaste(taste string) (Bean, bool) {
	for _, b := range c.Beans {
		if b.Taste == taste {
			return b, true
		}
	}
	return Bean{}, false
}

// FormatYen formats an amount as the storefront shows it, e.g. ¥12,800.
func FormatYen(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.Itoa(amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "¥" + b.String()
}
