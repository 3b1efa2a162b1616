// Package types defines the shared value types of the ktbn library: the
// (name, slice) identifiers users work with, arcs between them, evidence
// mappings for CPT access, and the error taxonomy raised by the temporal
// layer.
package types
