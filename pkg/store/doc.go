// Package store persists network definitions as YAML documents: the horizon,
// separator, variables with their domains, arcs, and CPT values. Both
// templates and unrolled flat nets round-trip through the same schema.
package store
