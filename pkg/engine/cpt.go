package engine

import (
	"fmt"
	"strings"
)

// memCPT is the in-memory table implementation. Cells live in a flat slice
// with the first variable (the head) as the fastest-varying index.
type memCPT struct {
	vars    []Variable
	strides []int
	data    []float64
}

// NewCPT builds a free-standing table over the given variables. Useful for
// relabeled copies and tests; tables attached to a net are created by the net
// itself.
func NewCPT(vars ...Variable) (CPT, error) {
	return newMemCPT(vars)
}

func newMemCPT(vars []Variable) (*memCPT, error) {
	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if len(v.Labels) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyDomain, v.Name)
		}
		if _, dup := seen[v.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrShapeMismatch, v.Name)
		}
		seen[v.Name] = struct{}{}
	}
	strides := make([]int, len(vars))
	size := 1
	for i, v := range vars {
		strides[i] = size
		size *= len(v.Labels)
	}
	cloned := make([]Variable, len(vars))
	for i, v := range vars {
		cloned[i] = v.Clone()
	}
	return &memCPT{vars: cloned, strides: strides, data: make([]float64, size)}, nil
}

func (c *memCPT) clone() *memCPT {
	out, _ := newMemCPT(c.vars)
	copy(out.data, c.data)
	return out
}

func (c *memCPT) DomainSize() int {
	return len(c.data)
}

func (c *memCPT) Variables() []Variable {
	out := make([]Variable, len(c.vars))
	for i, v := range c.vars {
		out[i] = v.Clone()
	}
	return out
}

// resolve turns name-keyed evidence into (variable index, state) pairs.
func (c *memCPT) resolve(evidence map[string]int) (map[int]int, error) {
	fixed := make(map[int]int, len(evidence))
	for name, state := range evidence {
		idx := -1
		for i, v := range c.vars {
			if v.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
		}
		if state < 0 || state >= len(c.vars[idx].Labels) {
			return nil, fmt.Errorf("%w: %q state %d", ErrBadState, name, state)
		}
		fixed[idx] = state
	}
	return fixed, nil
}

func (c *memCPT) matches(flat int, fixed map[int]int) bool {
	for i, state := range fixed {
		dim := len(c.vars[i].Labels)
		if (flat/c.strides[i])%dim != state {
			return false
		}
	}
	return true
}

func (c *memCPT) Get(evidence map[string]int) ([]float64, error) {
	fixed, err := c.resolve(evidence)
	if err != nil {
		return nil, err
	}
	var out []float64
	for flat := range c.data {
		if c.matches(flat, fixed) {
			out = append(out, c.data[flat])
		}
	}
	return out, nil
}

func (c *memCPT) Set(evidence map[string]int, value float64) error {
	fixed, err := c.resolve(evidence)
	if err != nil {
		return err
	}
	for flat := range c.data {
		if c.matches(flat, fixed) {
			c.data[flat] = value
		}
	}
	return nil
}

func (c *memCPT) Fill(value float64) error {
	for i := range c.data {
		c.data[i] = value
	}
	return nil
}

func (c *memCPT) FillValues(values []float64) error {
	if len(values) != len(c.data) {
		return fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(values), len(c.data))
	}
	copy(c.data, values)
	return nil
}

func (c *memCPT) FillFrom(other CPT, rename map[string]string) error {
	if other.DomainSize() != len(c.data) {
		return fmt.Errorf("%w: sizes %d and %d", ErrShapeMismatch, other.DomainSize(), len(c.data))
	}
	otherVars := other.Variables()
	otherDims := make(map[string]int, len(otherVars))
	for _, v := range otherVars {
		otherDims[v.Name] = len(v.Labels)
	}
	if len(otherVars) != len(c.vars) {
		return fmt.Errorf("%w: %d vs %d variables", ErrShapeMismatch, len(otherVars), len(c.vars))
	}
	mapped := make([]string, len(c.vars))
	for i, v := range c.vars {
		name := v.Name
		if to, ok := rename[name]; ok {
			name = to
		}
		dim, ok := otherDims[name]
		if !ok {
			return fmt.Errorf("%w: %q has no counterpart %q", ErrShapeMismatch, v.Name, name)
		}
		if dim != len(v.Labels) {
			return fmt.Errorf("%w: %q domain %d vs %d", ErrShapeMismatch, v.Name, len(v.Labels), dim)
		}
		mapped[i] = name
	}
	for flat := range c.data {
		evidence := make(map[string]int, len(c.vars))
		for i, v := range c.vars {
			evidence[mapped[i]] = (flat / c.strides[i]) % len(v.Labels)
		}
		vals, err := other.Get(evidence)
		if err != nil {
			return err
		}
		if len(vals) != 1 {
			return fmt.Errorf("%w: evidence selected %d cells", ErrShapeMismatch, len(vals))
		}
		c.data[flat] = vals[0]
	}
	return nil
}

// String renders the table with the head's labels as columns and one row per
// parent configuration.
func (c *memCPT) String() string {
	head := c.vars[0]
	parents := c.vars[1:]

	var b strings.Builder
	for _, p := range parents {
		fmt.Fprintf(&b, "%-14s| ", p.Name)
	}
	fmt.Fprintf(&b, "|| %s\n", head.Name)
	for range parents {
		b.WriteString(strings.Repeat("-", 14) + "|-")
	}
	b.WriteString("||" + strings.Repeat("-", 10*len(head.Labels)) + "\n")

	rows := len(c.data) / len(head.Labels)
	for row := 0; row < rows; row++ {
		rest := row
		for _, p := range parents {
			dim := len(p.Labels)
			fmt.Fprintf(&b, "%-14s| ", p.Labels[rest%dim])
			rest /= dim
		}
		b.WriteString("||")
		for h := range head.Labels {
			flat := h
			r := row
			for i, p := range parents {
				flat += (r % len(p.Labels)) * c.strides[i+1]
				r /= len(p.Labels)
			}
			fmt.Fprintf(&b, " %-8.4f ", c.data[flat])
		}
		b.WriteString("\n")
	}
	return b.String()
}
