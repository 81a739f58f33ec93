package dispatch

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ParamType is the JSON type a parameter accepts.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
)

// Param declares one tool argument. Min and Max bound numbers when non-zero.
type Param struct {
	Name        string
	Description string
	Type        ParamType
	Required    bool
	Enum        []string
	Min         int
	Max         int
}

// Args holds validated arguments: numbers are ints, booleans are bools and
// enum strings are upper-cased.
type Args map[string]any

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns the argument and whether it was supplied.
func (a Args) Int(name string) (int, bool) {
	v, ok := a[name].(int)
	return v, ok
}

func (a Args) IntOr(name string, def int) int {
	if v, ok := a.Int(name); ok {
		return v
	}
	return def
}

func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// validate checks raw arguments against the declared parameters. Strings are
// accepted for numbers and booleans so command line callers can pass them.
// Unknown arguments are ignored.
func validate(params []Param, raw map[string]any) (Args, error) {
	out := Args{}
	for _, p := range params {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return nil, fmt.Errorf("%s is required", p.Name)
			}
			continue
		}
		var (
			val any
			err error
		)
		switch p.Type {
		case TypeNumber:
			val, err = parseInt(p, v)
		case TypeBoolean:
			val, err = parseBool(p.Name, v)
		default:
			val, err = parseString(p, v)
		}
		if err != nil {
			return nil, err
		}
		if s, isString := val.(string); isString && s == "" {
			if p.Required {
				return nil, fmt.Errorf("%s is required", p.Name)
			}
			continue
		}
		out[p.Name] = val
	}
	return out, nil
}

func parseInt(p Param, value any) (int, error) {
	var n int
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%s must be an integer", p.Name)
		}
		n = int(v)
	case int:
		n = v
	case int64:
		n = int(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", p.Name)
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer", p.Name)
		}
		n = i
	default:
		return 0, fmt.Errorf("%s must be a number", p.Name)
	}
	if p.Min != 0 && n < p.Min {
		return 0, fmt.Errorf("%s must be at least %d", p.Name, p.Min)
	}
	if p.Max != 0 && n > p.Max {
		return 0, fmt.Errorf("%s must be at most %d", p.Name, p.Max)
	}
	return n, nil
}

func parseBool(name string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("%s must be a boolean", name)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s must be a boolean", name)
	}
}

func parseString(p Param, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", p.Name)
	}
	s = strings.TrimSpace(s)
	if len(p.Enum) == 0 || s == "" {
		return s, nil
	}
	s = strings.ToUpper(s)
	if !slices.Contains(p.Enum, s) {
		return "", fmt.Errorf("%s must be one of %s", p.Name, strings.Join(p.Enum, ", "))
	}
	return s, nil
}
