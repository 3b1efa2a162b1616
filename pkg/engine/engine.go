package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Provider identifies the engine backing a BayesNet.
type Provider string

const (
	// ProviderMemory is the built-in in-memory engine.
	ProviderMemory Provider = "memory"
)

// NodeID identifies a node inside one engine instance. IDs are stable for the
// lifetime of the node but carry no meaning across instances.
type NodeID int

// Arc is a directed edge between two engine nodes.
type Arc struct {
	Tail NodeID
	Head NodeID
}

// Variable describes a discrete random variable: a name, a free-form
// description, and its ordered label set.
type Variable struct {
	Name        string
	Description string
	Labels      []string
}

// NewLabelizedVariable builds a variable with n anonymous labels "0".."n-1".
func NewLabelizedVariable(name, description string, n int) Variable {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	return Variable{Name: name, Description: description, Labels: labels}
}

// Clone returns a deep copy of the variable.
func (v Variable) Clone() Variable {
	out := v
	out.Labels = append([]string(nil), v.Labels...)
	return out
}

// DomainSize is the number of states the variable can take.
func (v Variable) DomainSize() int {
	return len(v.Labels)
}

func (v Variable) String() string {
	return fmt.Sprintf("%s<%d>", v.Name, len(v.Labels))
}

// Errors returned by engine implementations. Callers above the engine
// translate these into the user-facing taxonomy where appropriate.
var (
	ErrNodeExists      = errors.New("engine: node already exists")
	ErrNodeNotFound    = errors.New("engine: node not found")
	ErrDuplicateArc    = errors.New("engine: arc already exists")
	ErrCycle           = errors.New("engine: arc would create a cycle")
	ErrSelfArc         = errors.New("engine: arc endpoints are identical")
	ErrUnknownVariable = errors.New("engine: evidence names unknown variable")
	ErrBadState        = errors.New("engine: evidence state outside domain")
	ErrSizeMismatch    = errors.New("engine: value count does not match domain size")
	ErrShapeMismatch   = errors.New("engine: source table shape does not match")
	ErrEmptyDomain     = errors.New("engine: variable has no labels")
)

// BayesNet is the graph side of the engine: node and arc storage plus CPT
// hand-out. Implementations own their storage exclusively; Clone must produce
// a fully independent copy.
type BayesNet interface {
	// Add inserts a node for v and returns its id. The variable name must be
	// unique and the label set non-empty.
	Add(v Variable) (NodeID, error)

	// Erase removes the named node, every arc incident to it, and reshapes
	// the CPTs of its former children.
	Erase(name string) error

	// Exists reports whether a node with the given name is present.
	Exists(name string) bool

	// IDFromName resolves a node name to its id.
	IDFromName(name string) (NodeID, error)

	// Variable returns the variable stored at id.
	Variable(id NodeID) (Variable, error)

	// Parents returns the parent ids of id in arc insertion order.
	Parents(id NodeID) ([]NodeID, error)

	// AddArc inserts a directed edge. Duplicate arcs, self arcs, and arcs
	// closing a cycle are rejected. The head's CPT is reshaped to include the
	// new parent.
	AddArc(tail, head NodeID) error

	// EraseArc removes an edge if present; removing an absent edge is a
	// no-op. The head's CPT is reshaped when an edge is removed.
	EraseArc(tail, head NodeID) error

	// Arcs enumerates all edges in insertion order.
	Arcs() []Arc

	// Names enumerates all node names in insertion order.
	Names() []string

	// CPT returns the conditional probability table of the named node.
	CPT(name string) (CPT, error)

	// Size is the number of nodes.
	Size() int

	// Clone returns an independent deep copy of the whole net.
	Clone() BayesNet

	// Provider identifies the backend.
	Provider() Provider
}

// CPT is one conditional probability table, keyed by the joint domain of its
// head variable and parents. The head is always the first entry of Variables
// and the fastest-varying index of the flat layout.
type CPT interface {
	// Get reads cells matching the evidence, in ascending flat order. Partial
	// evidence yields a sub-array, full evidence a single element.
	Get(evidence map[string]int) ([]float64, error)

	// Set writes value into every cell matching the evidence.
	Set(evidence map[string]int, value float64) error

	// Fill sets every cell to value.
	Fill(value float64) error

	// FillValues copies values positionally over the existing variable
	// ordering. len(values) must equal DomainSize.
	FillValues(values []float64) error

	// FillFrom copies other into this table cell by cell, translating this
	// table's variable names through rename (own name -> other's name) before
	// looking them up in other. Names absent from rename map to themselves.
	FillFrom(other CPT, rename map[string]string) error

	// DomainSize is the total number of cells.
	DomainSize() int

	// Variables returns the table's variable sequence, head first.
	Variables() []Variable

	// String renders the table with the head's labels as columns and one row
	// per parent configuration.
	String() string
}

// Inference is the exact-inference surface of the engine. The temporal layer
// only consumes it; implementations stay with the engine.
type Inference interface {
	// SetEvidence fixes observed states by flat variable name.
	SetEvidence(evidence map[string]int) error

	// Run performs inference over the current evidence.
	Run(ctx context.Context) error

	// Posterior returns the marginal distribution of the named variable.
	Posterior(name string) ([]float64, error)
}
