package wizard

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Values maps field names to their current input.
type Values map[string]string

// Errors maps field names to a validation message. A field without an entry
// is valid.
type Errors map[string]string

// Clone returns a copy of v.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Clone returns a copy of e.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	for k, msg := range e {
		out[k] = msg
	}
	return out
}

// Rule checks one field. Check returns an empty string when the field is
// valid and the message to display otherwise. all carries every value in the
// wizard so cross-field rules can compare against other fields.
type Rule struct {
	Field string
	Check func(value string, all Values) string
}

// Required fails when the trimmed value is empty.
func Required(field, msg string) Rule {
	return Rule{
		Field: field,
		Check: func(value string, _ Values) string {
			if strings.TrimSpace(value) == "" {
				return msg
			}
			return ""
		},
	}
}

// MinLength fails when a non-empty value has fewer than n characters.
func MinLength(field string, n int, msg string) Rule {
	return Rule{
		Field: field,
		Check: func(value string, _ Values) string {
			if value != "" && utf8.RuneCountInString(value) < n {
				return msg
			}
			return ""
		},
	}
}

// Matches fails when a non-empty value does not match re.
func Matches(field string, re *regexp.Regexp, msg string) Rule {
	return Rule{
		Field: field,
		Check: func(value string, _ Values) string {
			if value != "" && !re.MatchString(value) {
				return msg
			}
			return ""
		},
	}
}

// EqualsField fails when a non-empty value differs from the value of other.
func EqualsField(field, other, msg string) Rule {
	return Rule{
		Field: field,
		Check: func(value string, all Values) string {
			if value != "" && value != all[other] {
				return msg
			}
			return ""
		},
	}
}

// OneOf fails when a non-empty value is not one of options.
func OneOf(field string, options []string, msg string) Rule {
	return Rule{
		Field: field,
		Check: func(value string, _ Values) string {
			if value != "" && !slices.Contains(options, value) {
				return msg
			}
			return ""
		},
	}
}

// Step is one named stage of a wizard.
type Step struct {
	ID     string   // Stable identifier (e.g., "account")
	Title  string   // Display title
	Fields []string // Fields collected on this step, in display order
	Rules  []Rule   // Rules applied when leaving the step
}

// HasField reports whether the step collects field.
func (s Step) HasField(field string) bool {
	return slices.Contains(s.Fields, field)
}

// Validate applies the step's rules to values. For each field only the first
// failing rule is reported, in rule order.
func (s Step) Validate(values Values) Errors {
	errs := make(Errors)
	for _, r := range s.Rules {
		if _, failed := errs[r.Field]; failed {
			continue
		}
		if msg := r.Check(values[r.Field], values); msg != "" {
			errs[r.Field] = msg
		}
	}
	return errs
}
