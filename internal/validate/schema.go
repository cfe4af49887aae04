package validate

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/calmeet/calmeet/internal/classify"
)

// FieldType enumerates the value shapes a schema field can require.
type FieldType int

const (
	// TypeString accepts any non-empty JSON string.
	TypeString FieldType = iota
	// TypeBool accepts a JSON boolean.
	TypeBool
	// TypeInt accepts a JSON number with an integral value.
	TypeInt
	// TypeTimestamp accepts an RFC 3339 string with an explicit offset or Z
	// and normalizes it to a time.Time.
	TypeTimestamp
	// TypeEnum accepts one of a fixed set of string literals.
	TypeEnum
	// TypeResource accepts a string matching a provider resource-name
	// pattern.
	TypeResource
	// TypeStringList accepts a JSON array of strings.
	TypeStringList
)

// Field describes one argument of a tool schema. Fields are checked in
// declaration order so the first failing field is deterministic.
type Field struct {
	Name        string
	Description string
	Type        FieldType
	Required    bool

	// Default is applied when an optional field is absent. Defaults for
	// TypeTimestamp fields must be time.Time values.
	Default any

	// Enum lists the allowed literals for TypeEnum fields.
	Enum []string

	// Pattern constrains TypeResource fields. PatternName is used in error
	// messages, e.g. "spaces/{id}".
	Pattern     *regexp.Regexp
	PatternName string

	// Min and Max bound TypeInt fields when non-nil.
	Min *int64
	Max *int64
}

// Rule is a cross-field business rule evaluated after all per-field checks
// pass. Rules run in declaration order and the first failure wins.
type Rule func(Args) *classify.Error

// Schema validates and normalizes the raw arguments of one tool.
type Schema struct {
	Fields []Field
	Rules  []Rule
}

// Args holds validated, normalized arguments. Timestamps are stored as
// time.Time; everything else keeps its JSON shape. Once produced, Args are
// passed through to the adapter unchanged.
type Args map[string]any

// String returns the named string argument, or "" when absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Bool returns the named boolean argument, or false when absent.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Int returns the named integer argument, or 0 when absent.
func (a Args) Int(name string) int64 {
	n, _ := a[name].(int64)
	return n
}

// Time returns the named timestamp argument, or the zero time when absent.
func (a Args) Time(name string) time.Time {
	t, _ := a[name].(time.Time)
	return t
}

// Strings returns the named string-list argument, or nil when absent.
func (a Args) Strings(name string) []string {
	s, _ := a[name].([]string)
	return s
}

// Has reports whether the named argument is present.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Validate checks raw caller-supplied arguments against the schema and
// returns fully-defaulted Args. Unknown keys in raw are ignored. The
// returned error is always of kind InvalidInput.
func (s *Schema) Validate(raw map[string]any) (Args, *classify.Error) {
	args := make(Args, len(s.Fields))

	for i := range s.Fields {
		f := &s.Fields[i]
		value, present := raw[f.Name]
		if !present || value == nil {
			if f.Required {
				return nil, classify.InvalidInput(f.Name, describe(f), "nothing")
			}
			if f.Default != nil {
				args[f.Name] = f.Default
			}
			continue
		}

		normalized, err := checkField(f, value)
		if err != nil {
			return nil, err
		}
		args[f.Name] = normalized
	}

	for _, rule := range s.Rules {
		if err := rule(args); err != nil {
			return nil, err
		}
	}

	return args, nil
}

func checkField(f *Field, value any) (any, *classify.Error) {
	switch f.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok || s == "" {
			return nil, classify.InvalidInput(f.Name, "a non-empty string", value)
		}
		return s, nil

	case TypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, classify.InvalidInput(f.Name, "a boolean", value)
		}
		return b, nil

	case TypeInt:
		n, ok := toInt64(value)
		if !ok {
			return nil, classify.InvalidInput(f.Name, "an integer", value)
		}
		if f.Min != nil && n < *f.Min {
			return nil, classify.InvalidInput(f.Name, fmt.Sprintf("an integer >= %d", *f.Min), n)
		}
		if f.Max != nil && n > *f.Max {
			return nil, classify.InvalidInput(f.Name, fmt.Sprintf("an integer <= %d", *f.Max), n)
		}
		return n, nil

	case TypeTimestamp:
		s, ok := value.(string)
		if !ok {
			return nil, classify.InvalidInput(f.Name, "an RFC 3339 timestamp string", value)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, classify.InvalidInput(f.Name, "an RFC 3339 timestamp with an explicit offset or Z", s)
		}
		return t, nil

	case TypeEnum:
		s, ok := value.(string)
		if !ok {
			return nil, classify.InvalidInput(f.Name, "one of "+strings.Join(f.Enum, ", "), value)
		}
		for _, allowed := range f.Enum {
			if s == allowed {
				return s, nil
			}
		}
		return nil, classify.InvalidInput(f.Name, "one of "+strings.Join(f.Enum, ", "), s)

	case TypeResource:
		s, ok := value.(string)
		if !ok || !f.Pattern.MatchString(s) {
			return nil, classify.InvalidInput(f.Name, "a resource name matching "+f.PatternName, value)
		}
		return s, nil

	case TypeStringList:
		switch list := value.(type) {
		case []string:
			return list, nil
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, classify.InvalidInput(f.Name, "an array of strings", value)
				}
				out = append(out, s)
			}
			return out, nil
		default:
			return nil, classify.InvalidInput(f.Name, "an array of strings", value)
		}

	default:
		return nil, classify.InvalidInput(f.Name, "a supported value type", value)
	}
}

// toInt64 accepts native ints plus the float64 values produced by JSON
// decoding, rejecting fractional numbers.
func toInt64(value any) (int64, bool) {
	switch n := value.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func describe(f *Field) string {
	switch f.Type {
	case TypeBool:
		return "a required boolean"
	case TypeInt:
		return "a required integer"
	case TypeTimestamp:
		return "a required RFC 3339 timestamp"
	case TypeEnum:
		return "a required value, one of " + strings.Join(f.Enum, ", ")
	case TypeResource:
		return "a required resource name matching " + f.PatternName
	case TypeStringList:
		return "a required array of strings"
	default:
		return "a required non-empty string"
	}
}
