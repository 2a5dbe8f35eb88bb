package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Fepozopo/edgebench/pkg/filters"
)

// ParamType is a small enum for parameter types used in metadata.
type ParamType string

const (
	ParamTypeInt    ParamType = "int"
	ParamTypeFloat  ParamType = "float"
	ParamTypeEnum   ParamType = "enum"
	ParamTypeString ParamType = "string"
)

func paramType(a filters.ArgSpec) ParamType {
	switch strings.ToLower(a.Type) {
	case "int":
		return ParamTypeInt
	case "float":
		return ParamTypeFloat
	case "enum":
		return ParamTypeEnum
	}
	return ParamTypeString
}

// enumAliases maps accepted spellings onto the canonical names understood by
// the filter engine, per parameter name.
var enumAliases = map[string]map[string]string{
	"noisetype": {
		"GAUSSIAN": "GAUSSIAN", "GAUSS": "GAUSSIAN", "NORMAL": "GAUSSIAN",
		"UNIFORM":    "UNIFORM",
		"POISSON":    "POISSON",
		"SALTPEPPER": "SALTPEPPER", "SALT-PEPPER": "SALTPEPPER", "SALT_PEPPER": "SALTPEPPER", "IMPULSE": "SALTPEPPER",
	},
	"scorer": {
		"VARIANCE": "variance",
		"ENTROPY":  "entropy",
		"MEDIAN":   "median-variance", "MEDIAN-VARIANCE": "median-variance",
	},
	"aggregator": {
		"MEAN":   "mean",
		"MEDIAN": "median",
	},
}

// Tooltip describes a filter and its parameters.
func Tooltip(c filters.CommandSpec) string {
	var sb strings.Builder
	sb.WriteString(c.Label)
	if c.Description != "" {
		sb.WriteString(": " + c.Description)
	}
	if len(c.Args) == 0 {
		return sb.String()
	}
	sb.WriteString("\nparameters:")
	for _, a := range c.Args {
		req := "optional"
		if a.Required {
			req = "required"
		}
		fmt.Fprintf(&sb, "\n- %s (%s, %s)", a.Name, a.Type, req)
		if a.Description != "" {
			sb.WriteString(", " + a.Description)
		}
		if a.Default != "" {
			sb.WriteString(" [default " + a.Default + "]")
		}
	}
	return sb.String()
}

// NormalizeArgs checks raw prompt answers against the filter's argument
// specs and returns canonical strings. Empty optional answers stay empty so
// the engine applies its configured default.
func NormalizeArgs(c filters.CommandSpec, args []string) ([]string, error) {
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		raw := ""
		if i < len(args) {
			raw = strings.TrimSpace(args[i])
		}
		if raw == "" {
			if a.Required {
				return nil, fmt.Errorf("missing required parameter: %s", a.Name)
			}
			continue
		}
		switch paramType(a) {
		case ParamTypeInt:
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected integer, got %q", a.Name, raw)
			}
			out[i] = strconv.Itoa(v)
		case ParamTypeFloat:
			f, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: expected number, got %q", a.Name, raw)
			}
			if strings.HasSuffix(raw, "%") {
				f /= 100
			}
			out[i] = strconv.FormatFloat(f, 'f', -1, 64)
		case ParamTypeEnum:
			aliases := enumAliases[strings.ToLower(a.Name)]
			v, ok := aliases[strings.ToUpper(raw)]
			if !ok {
				return nil, fmt.Errorf("parameter %s: %q is not one of %s", a.Name, raw, a.Description)
			}
			out[i] = v
		default:
			out[i] = raw
		}
	}
	return out, nil
}

// findCommand resolves a menu answer: a 1-based index, an exact name or an
// unambiguous name prefix.
func findCommand(commands []filters.CommandSpec, selection string) (filters.CommandSpec, error) {
	if idx, err := strconv.Atoi(selection); err == nil {
		if idx < 1 || idx > len(commands) {
			return filters.CommandSpec{}, fmt.Errorf("invalid selection %d", idx)
		}
		return commands[idx-1], nil
	}
	sel := strings.ToLower(selection)
	var matches []filters.CommandSpec
	for _, c := range commands {
		if strings.ToLower(c.Name) == sel || strings.ToLower(c.Label) == sel {
			return c, nil
		}
		if strings.HasPrefix(strings.ToLower(c.Name), sel) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return filters.CommandSpec{}, fmt.Errorf("unknown filter: %s", selection)
	case 1:
		return matches[0], nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return filters.CommandSpec{}, fmt.Errorf("ambiguous selection, candidates: %s", strings.Join(names, ", "))
}
