// Package engine defines the contract the temporal layer expects from a
// probabilistic-graph engine (node and arc storage, CPT access, inference)
// and ships an in-memory reference engine implementing the graph and CPT
// parts of it.
//
// The engine works purely in flat node names; it knows nothing about time
// slices. Everything temporal lives above it in package ktbn.
package engine
