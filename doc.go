// Package ktbn provides a temporal indexing and unrolling layer for dynamic
// Bayesian networks on top of an external probabilistic-graph engine.
//
// A k-slice temporal Bayesian network (kTBN) is a finite template: every
// logical variable is replicated once per time slice t in [0, k), and arcs
// may only point forward in time. Users describe variables and dependencies
// with (name, slice) identifiers; the library translates them to the flat
// node names the engine stores, enforces temporal ordering and horizon
// constraints, and can unroll the template into an arbitrarily long flat
// network for inference.
//
// # Basic Usage
//
// Build a template over two binary variables and unroll it:
//
//	net, err := ktbn.New(3)
//	if err != nil {
//		log.Fatal(err)
//	}
//	net.AddVariable(engine.NewLabelizedVariable("A", "A", 2))
//	net.AddVariable(engine.NewLabelizedVariable("B", "B", 2))
//	net.AddArc(types.Key("A", 0), types.Key("A", 1))
//	net.AddArc(types.Key("A", 1), types.Key("B", 2))
//	net.AddArc(types.Key("B", 1), types.Key("B", 2))
//
//	cpt, _ := net.CPT(types.Key("B", 2))
//	cpt.FillValues([]float64{0.3, 0.7, 0.6, 0.4, 0.5, 0.5, 0.2, 0.8})
//
//	flat, err := net.Unroll(10)
//
// The unrolled result is an independent engine.BayesNet over slices [0, 10):
// the template's structure is copied verbatim for the first k slices, and the
// transition pattern of the final template slice repeats for the rest.
//
// # Architecture
//
//   - pkg/naming: the (name, slice) <-> flat-name codec
//   - pkg/types: shared value types and the error taxonomy
//   - pkg/engine: the engine contract plus the in-memory reference engine
//   - pkg/store: YAML persistence for templates and unrolled nets
//   - pkg/server: HTTP surface over a named-network registry
//
// The engine is an external collaborator: the library never implements
// inference or CPT arithmetic, only naming, structural constraints, and the
// unrolling algorithm.
//
// # Error Handling
//
// Operations fail with one of four typed errors from pkg/types, all usable
// with errors.As:
//
//   - ValidationError: malformed name, separator collision, unroll target < k
//   - OrderingError: arc pointing backward in time
//   - HorizonError: slice outside [0, k)
//   - NotFoundError: unknown variable, node, or arc endpoint
//
// Validation happens before any engine mutation, so a failed call leaves the
// network unchanged.
package ktbn
