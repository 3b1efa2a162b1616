package ktbn

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/soundprediction/ktbn/pkg/engine"
	"github.com/soundprediction/ktbn/pkg/naming"
	"github.com/soundprediction/ktbn/pkg/types"
)

// Network is a k-slice temporal Bayesian network template. It owns one engine
// net exclusively, tracks the registered atemporal variable names, and
// translates every user-facing (name, slice) identifier through its codec.
//
// Network is not safe for concurrent use; callers serialize access.
type Network struct {
	net    engine.BayesNet
	codec  naming.Codec
	k      int
	names  map[string]struct{}
	logger *slog.Logger
}

// Option configures a Network at construction time.
type Option func(*Network)

// WithSeparator overrides the default "#" separator.
func WithSeparator(sep string) Option {
	return func(n *Network) { n.codec = naming.New(sep) }
}

// WithEngine supplies the engine net the template is built in. The network
// takes exclusive ownership; the net must be empty.
func WithEngine(net engine.BayesNet) Option {
	return func(n *Network) { n.net = net }
}

// WithLogger injects the logger used for mutation logging. Defaults to
// slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Network) { n.logger = logger }
}

// New creates an empty template with horizon k.
func New(k int, opts ...Option) (*Network, error) {
	if k < 1 {
		return nil, types.Validationf("horizon must be at least 1, got %d", k)
	}
	n := &Network{
		codec: naming.Default(),
		k:     k,
		names: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.net == nil {
		n.net = engine.NewMemoryNet()
	}
	if n.logger == nil {
		n.logger = slog.Default()
	}
	return n, nil
}

// Horizon returns the number of time slices k materialized by the template.
func (n *Network) Horizon() int {
	return n.k
}

// Separator returns the separator used in flat node names.
func (n *Network) Separator() string {
	return n.codec.Separator()
}

// Codec returns the name codec in use.
func (n *Network) Codec() naming.Codec {
	return n.codec
}

// Engine exposes the underlying engine net, e.g. to hand it to an inference
// object. Mutating it directly bypasses the temporal constraints.
func (n *Network) Engine() engine.BayesNet {
	return n.net
}

// Variables returns the registered atemporal names in sorted order.
func (n *Network) Variables() []string {
	out := make([]string, 0, len(n.names))
	for name := range n.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Registered reports whether name is a registered variable.
func (n *Network) Registered(name string) bool {
	_, ok := n.names[name]
	return ok
}

// AddVariable registers v and creates one replica per time slice, each cloned
// from v's domain and described with its slice.
func (n *Network) AddVariable(v engine.Variable) error {
	if _, err := n.codec.Encode(v.Name, 0); err != nil {
		return err
	}
	if _, dup := n.names[v.Name]; dup {
		return types.Validationf("variable %q already exists", v.Name)
	}
	if len(v.Labels) == 0 {
		return types.Validationf("variable %q has an empty domain", v.Name)
	}
	for t := 0; t < n.k; t++ {
		flat, _ := n.codec.Encode(v.Name, t)
		replica := v.Clone()
		replica.Name = flat
		replica.Description = fmt.Sprintf("%s (t=%d)", v.Description, t)
		if _, err := n.net.Add(replica); err != nil {
			return fmt.Errorf("adding %s: %w", flat, err)
		}
	}
	n.names[v.Name] = struct{}{}
	n.logger.Info("added variable across all time slices", "name", v.Name, "slices", n.k)
	return nil
}

// AddVariableFast registers a variable from a fast-syntax description:
// "A" (binary), "A[4]" (domain size 4), or "A{on|off}" (explicit labels).
func (n *Network) AddVariableFast(desc string) error {
	v, err := parseFastVariable(desc)
	if err != nil {
		return err
	}
	return n.AddVariable(v)
}

// RemoveVariable unregisters name and erases every per-slice replica. The
// engine cascades the removal of incident arcs.
func (n *Network) RemoveVariable(name string) error {
	if _, ok := n.names[name]; !ok {
		return &types.NotFoundError{Kind: "variable", Name: name}
	}
	for t := 0; t < n.k; t++ {
		flat, _ := n.codec.Encode(name, t)
		if err := n.net.Erase(flat); err != nil {
			return fmt.Errorf("erasing %s: %w", flat, err)
		}
	}
	delete(n.names, name)
	n.logger.Info("removed variable and its arcs", "name", name)
	return nil
}

// Variable returns the logical variable registered under name: the slice-0
// replica with the user-facing name and un-annotated description restored.
func (n *Network) Variable(name string) (engine.Variable, error) {
	if _, ok := n.names[name]; !ok {
		return engine.Variable{}, &types.NotFoundError{Kind: "variable", Name: name}
	}
	flat, _ := n.codec.Encode(name, 0)
	id, err := n.net.IDFromName(flat)
	if err != nil {
		return engine.Variable{}, err
	}
	v, err := n.net.Variable(id)
	if err != nil {
		return engine.Variable{}, err
	}
	v.Name = name
	v.Description = strings.TrimSuffix(v.Description, " (t=0)")
	return v, nil
}

// AddArc inserts a directed dependency between two replicas. Arcs may not
// point backward in time and both endpoints must lie inside the horizon.
func (n *Network) AddArc(tail, head types.UserKey) error {
	if tail.Slice > head.Slice {
		return &types.OrderingError{Tail: tail, Head: head}
	}
	for _, key := range []types.UserKey{tail, head} {
		if key.Slice < 0 || key.Slice >= n.k {
			return &types.HorizonError{Key: key, Horizon: n.k}
		}
	}
	for _, key := range []types.UserKey{tail, head} {
		if _, ok := n.names[key.Name]; !ok {
			return &types.NotFoundError{Kind: "variable", Name: key.Name}
		}
	}
	tailID, headID, err := n.arcIDs(tail, head)
	if err != nil {
		return err
	}
	if err := n.net.AddArc(tailID, headID); err != nil {
		return fmt.Errorf("adding arc %s: %w", types.Arc{Tail: tail, Head: head}, err)
	}
	n.logger.Info("added arc", "arc", types.Arc{Tail: tail, Head: head}.String())
	return nil
}

// RemoveArc deletes the arc between two replicas. Removing an absent arc is a
// no-op, not an error; the engine reshapes the head's CPT when an arc goes.
func (n *Network) RemoveArc(tail, head types.UserKey) error {
	for _, key := range []types.UserKey{tail, head} {
		if key.Slice < 0 || key.Slice >= n.k {
			return nil
		}
		if _, ok := n.names[key.Name]; !ok {
			return nil
		}
	}
	tailID, headID, err := n.arcIDs(tail, head)
	if err != nil {
		return err
	}
	if err := n.net.EraseArc(tailID, headID); err != nil {
		return fmt.Errorf("erasing arc %s: %w", types.Arc{Tail: tail, Head: head}, err)
	}
	n.logger.Info("removed arc", "arc", types.Arc{Tail: tail, Head: head}.String())
	return nil
}

// Arcs lists every arc as UserKey pairs, in the engine's enumeration order.
func (n *Network) Arcs() ([]types.Arc, error) {
	engineArcs := n.net.Arcs()
	out := make([]types.Arc, 0, len(engineArcs))
	for _, a := range engineArcs {
		tail, err := n.keyFromID(a.Tail)
		if err != nil {
			return nil, err
		}
		head, err := n.keyFromID(a.Head)
		if err != nil {
			return nil, err
		}
		out = append(out, types.Arc{Tail: tail, Head: head})
	}
	return out, nil
}

// ArcStrings is Arcs rendered printable.
func (n *Network) ArcStrings() ([]string, error) {
	arcs, err := n.Arcs()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(arcs))
	for i, a := range arcs {
		out[i] = a.String()
	}
	return out, nil
}

// CPT returns a tensor view over the conditional probability table of one
// replica.
func (n *Network) CPT(key types.UserKey) (*Tensor, error) {
	flat, err := n.codec.EncodeKey(key)
	if err != nil {
		return nil, err
	}
	if !n.net.Exists(flat) {
		return nil, &types.NotFoundError{Kind: "node", Name: key.String()}
	}
	cpt, err := n.net.CPT(flat)
	if err != nil {
		return nil, err
	}
	return &Tensor{cpt: cpt, codec: n.codec}, nil
}

// IDFromName resolves a replica to its engine node id.
func (n *Network) IDFromName(key types.UserKey) (engine.NodeID, error) {
	flat, err := n.codec.EncodeKey(key)
	if err != nil {
		return 0, err
	}
	id, err := n.net.IDFromName(flat)
	if err != nil {
		return 0, &types.NotFoundError{Kind: "node", Name: key.String()}
	}
	return id, nil
}

func (n *Network) arcIDs(tail, head types.UserKey) (engine.NodeID, engine.NodeID, error) {
	tailID, err := n.IDFromName(tail)
	if err != nil {
		return 0, 0, err
	}
	headID, err := n.IDFromName(head)
	if err != nil {
		return 0, 0, err
	}
	return tailID, headID, nil
}

func (n *Network) keyFromID(id engine.NodeID) (types.UserKey, error) {
	v, err := n.net.Variable(id)
	if err != nil {
		return types.UserKey{}, err
	}
	return n.codec.Decode(v.Name)
}

// parseFastVariable understands the fast creation syntax: a bare name yields
// a binary variable, "name[n]" a variable with n states, "name{a|b|c}"
// explicit labels.
func parseFastVariable(desc string) (engine.Variable, error) {
	desc = strings.TrimSpace(desc)
	switch {
	case strings.HasSuffix(desc, "}"):
		name, body, ok := strings.Cut(desc, "{")
		if !ok || name == "" {
			return engine.Variable{}, types.Validationf("malformed fast variable %q", desc)
		}
		labels := strings.Split(strings.TrimSuffix(body, "}"), "|")
		if len(labels) < 2 {
			return engine.Variable{}, types.Validationf("fast variable %q needs at least two labels", desc)
		}
		return engine.Variable{Name: name, Description: name, Labels: labels}, nil
	case strings.HasSuffix(desc, "]"):
		name, body, ok := strings.Cut(desc, "[")
		if !ok || name == "" {
			return engine.Variable{}, types.Validationf("malformed fast variable %q", desc)
		}
		size, err := strconv.Atoi(strings.TrimSuffix(body, "]"))
		if err != nil || size < 2 {
			return engine.Variable{}, types.Validationf("fast variable %q has an invalid domain size", desc)
		}
		return engine.NewLabelizedVariable(name, name, size), nil
	case desc == "":
		return engine.Variable{}, types.Validationf("empty fast variable description")
	default:
		return engine.NewLabelizedVariable(desc, desc, 2), nil
	}
}
