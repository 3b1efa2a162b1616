package engine

import "fmt"

// memNode is one node of the in-memory net.
type memNode struct {
	id       NodeID
	v        Variable
	parents  []NodeID // arc insertion order
	children []NodeID
	cpt      *memCPT
}

// MemoryNet is the built-in engine: plain maps and slices, no persistence,
// exclusive single-owner semantics. Arc enumeration order is insertion order,
// which keeps repeated runs over the same mutation sequence identical.
type MemoryNet struct {
	nodes  map[NodeID]*memNode
	byName map[string]NodeID
	order  []NodeID
	arcs   []Arc
	nextID NodeID
}

// NewMemoryNet returns an empty in-memory net.
func NewMemoryNet() *MemoryNet {
	return &MemoryNet{
		nodes:  make(map[NodeID]*memNode),
		byName: make(map[string]NodeID),
	}
}

func (m *MemoryNet) Provider() Provider {
	return ProviderMemory
}

func (m *MemoryNet) Size() int {
	return len(m.nodes)
}

func (m *MemoryNet) Add(v Variable) (NodeID, error) {
	if len(v.Labels) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrEmptyDomain, v.Name)
	}
	if _, exists := m.byName[v.Name]; exists {
		return 0, fmt.Errorf("%w: %q", ErrNodeExists, v.Name)
	}
	id := m.nextID
	m.nextID++
	n := &memNode{id: id, v: v.Clone()}
	cpt, err := newMemCPT([]Variable{n.v})
	if err != nil {
		return 0, err
	}
	n.cpt = cpt
	m.nodes[id] = n
	m.byName[v.Name] = id
	m.order = append(m.order, id)
	return id, nil
}

func (m *MemoryNet) Erase(name string) error {
	id, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	// Cascade: drop incident arcs, then reshape the CPTs of former children.
	kept := m.arcs[:0]
	reshape := make(map[NodeID]struct{})
	for _, a := range m.arcs {
		if a.Tail == id || a.Head == id {
			if a.Tail == id {
				reshape[a.Head] = struct{}{}
			}
			continue
		}
		kept = append(kept, a)
	}
	m.arcs = kept
	for _, n := range m.nodes {
		n.parents = removeID(n.parents, id)
		n.children = removeID(n.children, id)
	}
	delete(m.nodes, id)
	delete(m.byName, name)
	m.order = removeID(m.order, id)
	for child := range reshape {
		if n, ok := m.nodes[child]; ok {
			if err := m.rebuildCPT(n); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MemoryNet) Exists(name string) bool {
	_, ok := m.byName[name]
	return ok
}

func (m *MemoryNet) IDFromName(name string) (NodeID, error) {
	id, ok := m.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return id, nil
}

func (m *MemoryNet) Variable(id NodeID) (Variable, error) {
	n, ok := m.nodes[id]
	if !ok {
		return Variable{}, fmt.Errorf("%w: id %d", ErrNodeNotFound, id)
	}
	return n.v.Clone(), nil
}

func (m *MemoryNet) Parents(id NodeID) ([]NodeID, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNodeNotFound, id)
	}
	return append([]NodeID(nil), n.parents...), nil
}

func (m *MemoryNet) AddArc(tail, head NodeID) error {
	t, ok := m.nodes[tail]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNodeNotFound, tail)
	}
	h, ok := m.nodes[head]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNodeNotFound, head)
	}
	if tail == head {
		return fmt.Errorf("%w: %q", ErrSelfArc, t.v.Name)
	}
	for _, a := range m.arcs {
		if a.Tail == tail && a.Head == head {
			return fmt.Errorf("%w: %s -> %s", ErrDuplicateArc, t.v.Name, h.v.Name)
		}
	}
	if m.reachable(head, tail) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, t.v.Name, h.v.Name)
	}
	m.arcs = append(m.arcs, Arc{Tail: tail, Head: head})
	h.parents = append(h.parents, tail)
	t.children = append(t.children, head)
	return m.rebuildCPT(h)
}

func (m *MemoryNet) EraseArc(tail, head NodeID) error {
	found := false
	kept := m.arcs[:0]
	for _, a := range m.arcs {
		if a.Tail == tail && a.Head == head {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	m.arcs = kept
	if !found {
		return nil
	}
	if t, ok := m.nodes[tail]; ok {
		t.children = removeID(t.children, head)
	}
	if h, ok := m.nodes[head]; ok {
		h.parents = removeID(h.parents, tail)
		return m.rebuildCPT(h)
	}
	return nil
}

func (m *MemoryNet) Arcs() []Arc {
	return append([]Arc(nil), m.arcs...)
}

func (m *MemoryNet) Names() []string {
	out := make([]string, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id].v.Name)
	}
	return out
}

func (m *MemoryNet) CPT(name string) (CPT, error) {
	id, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return m.nodes[id].cpt, nil
}

func (m *MemoryNet) Clone() BayesNet {
	out := NewMemoryNet()
	out.nextID = m.nextID
	out.order = append([]NodeID(nil), m.order...)
	out.arcs = append([]Arc(nil), m.arcs...)
	for id, n := range m.nodes {
		out.nodes[id] = &memNode{
			id:       id,
			v:        n.v.Clone(),
			parents:  append([]NodeID(nil), n.parents...),
			children: append([]NodeID(nil), n.children...),
			cpt:      n.cpt.clone(),
		}
		out.byName[n.v.Name] = id
	}
	return out
}

// rebuildCPT resizes a node's table to its current parent set. Values are
// reset to zero, matching how the reference engine behaves when structure
// changes.
func (m *MemoryNet) rebuildCPT(n *memNode) error {
	vars := make([]Variable, 0, len(n.parents)+1)
	vars = append(vars, n.v)
	for _, pid := range n.parents {
		p, ok := m.nodes[pid]
		if !ok {
			return fmt.Errorf("%w: id %d", ErrNodeNotFound, pid)
		}
		vars = append(vars, p.v)
	}
	cpt, err := newMemCPT(vars)
	if err != nil {
		return err
	}
	n.cpt = cpt
	return nil
}

// reachable reports whether there is a directed path from src to dst.
func (m *MemoryNet) reachable(src, dst NodeID) bool {
	if src == dst {
		return true
	}
	seen := map[NodeID]struct{}{src: {}}
	stack := []NodeID{src}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n, ok := m.nodes[cur]
		if !ok {
			continue
		}
		for _, child := range n.children {
			if child == dst {
				return true
			}
			if _, dup := seen[child]; dup {
				continue
			}
			seen[child] = struct{}{}
			stack = append(stack, child)
		}
	}
	return false
}

func removeID(ids []NodeID, id NodeID) []NodeID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
