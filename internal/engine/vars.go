package engine

import (
	"os"
	"strings"

	"k8s.io/client-go/util/homedir"
)

// VarContext is the layered, read only variable mapping used for
// substitution. Lookups consult user defined variables first, then the
// predefined ones (HOME, CWD, PROJECT_DIR), then the process environment.
// It is built once per run and never mutated during execution.
type VarContext struct {
	user       map[string]string
	predefined map[string]string
	env        func(name string) (string, bool)
}

// NewVarContext builds the substitution context for one run. projectDir is
// the directory holding the configuration file, defines are the raw -D
// NAME=VALUE definitions from the invocation.
func NewVarContext(projectDir string, defines []string) (*VarContext, error) {
	user, err := ParseDefines(defines)
	if err != nil {
		return nil, err
	}

	predefined := map[string]string{
		"PROJECT_DIR": projectDir,
	}
	if cwd, err := os.Getwd(); err == nil {
		predefined["CWD"] = cwd
	}
	if home := homedir.HomeDir(); home != "" {
		predefined["HOME"] = home
	}

	return &VarContext{
		user:       user,
		predefined: predefined,
		env:        os.LookupEnv,
	}, nil
}

// ParseDefines parses NAME=VALUE definitions. A definition without '=' or
// with an empty name fails with InvalidDefinitionError.
func ParseDefines(defines []string) (map[string]string, error) {
	vars := make(map[string]string, len(defines))
	for _, d := range defines {
		name, value, ok := strings.Cut(d, "=")
		if !ok || name == "" {
			return nil, &InvalidDefinitionError{Definition: d}
		}
		vars[name] = value
	}
	return vars, nil
}

// Lookup returns the value of name, consulting the layers in priority order.
// First match wins.
func (c *VarContext) Lookup(name string) (string, bool) {
	if v, ok := c.user[name]; ok {
		return v, true
	}
	if v, ok := c.predefined[name]; ok {
		return v, true
	}
	return c.env(name)
}

// Expand substitutes $(NAME) and ${NAME} references in s and expands a
// leading ~ to HOME. Expansion is a single left to right pass: an expanded
// value is inserted verbatim and never rescanned, so there is no recursive
// expansion. A reference to an unknown name fails the whole string.
func (c *VarContext) Expand(s string) (string, error) {
	if s == "~" || strings.HasPrefix(s, "~/") {
		home, ok := c.Lookup("HOME")
		if !ok {
			return "", &UndefinedVariableError{Name: "HOME"}
		}
		s = home + s[1:]
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '$' || i+1 >= len(s) || (s[i+1] != '(' && s[i+1] != '{') {
			b.WriteByte(s[i])
			i++
			continue
		}

		term := byte(')')
		if s[i+1] == '{' {
			term = '}'
		}
		end := strings.IndexByte(s[i+2:], term)
		if end < 0 {
			return "", &UnclosedReferenceError{Ref: s[i:]}
		}

		name := s[i+2 : i+2+end]
		value, ok := c.Lookup(name)
		if !ok {
			return "", &UndefinedVariableError{Name: name}
		}
		b.WriteString(value)
		i += 2 + end + 1
	}

	return b.String(), nil
}

// ExpandAll expands every string of in, failing on the first error.
func (c *VarContext) ExpandAll(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, s := range in {
		expanded, err := c.Expand(s)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}
