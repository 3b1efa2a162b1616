package ktbn

import (
	"fmt"
	"sort"

	"github.com/soundprediction/ktbn/pkg/engine"
	"github.com/soundprediction/ktbn/pkg/types"
)

// tailRef records one transition dependency: the tail's base name and the
// time offset between the transition arc's head and tail. The offset is the
// generalized lag assumed to hold at every unrolled slice.
type tailRef struct {
	base   string
	offset int
}

// Unroll extends the template into an independent flat network over slices
// [0, slices). The template's graph is copied verbatim as the seed for the
// first k slices; beyond that, the transition pattern of the final template
// slice repeats.
//
// Only arcs whose head lies in slice k-1 are treated as recurring. A variable
// with no such arc keeps its initial marginal and stays disconnected in the
// new slices; that is a documented limitation of the contract, not an error.
//
// The returned net shares nothing with the template; mutating one never
// affects the other.
func (n *Network) Unroll(slices int) (engine.BayesNet, error) {
	if slices < n.k {
		return nil, types.Validationf(
			"unroll target %d is shorter than the template horizon %d", slices, n.k)
	}

	out := n.net.Clone()

	// New replicas for every registered variable, cloned from the slice-0
	// domain. Sorted name order keeps node ids reproducible across runs.
	for _, name := range n.Variables() {
		base, err := n.Variable(name)
		if err != nil {
			return nil, err
		}
		for t := n.k; t < slices; t++ {
			flat, err := n.codec.Encode(name, t)
			if err != nil {
				return nil, err
			}
			replica := base.Clone()
			replica.Name = flat
			replica.Description = fmt.Sprintf("%s (t=%d)", base.Description, t)
			if _, err := out.Add(replica); err != nil {
				return nil, fmt.Errorf("adding %s: %w", flat, err)
			}
		}
	}

	transitions, headBases, err := n.transitionPattern()
	if err != nil {
		return nil, err
	}

	// Replicate the pattern: for each new slice t, an arc from (tb, t-d) to
	// (hb, t) for every recorded (tb, d).
	for t := n.k; t < slices; t++ {
		for _, hb := range headBases {
			headFlat, _ := n.codec.Encode(hb, t)
			headID, err := out.IDFromName(headFlat)
			if err != nil {
				return nil, err
			}
			for _, tr := range transitions[hb] {
				tailFlat, _ := n.codec.Encode(tr.base, t-tr.offset)
				tailID, err := out.IDFromName(tailFlat)
				if err != nil {
					return nil, err
				}
				if err := out.AddArc(tailID, headID); err != nil {
					return nil, fmt.Errorf("extending arc %s -> %s: %w", tailFlat, headFlat, err)
				}
			}
		}
	}

	// CPT propagation, ascending in t so each slice copies from the one
	// before it: the rename map sends every axis of the slice-t table to its
	// slice-(t-1) counterpart.
	for _, hb := range headBases {
		for t := n.k; t < slices; t++ {
			newHead, _ := n.codec.Encode(hb, t)
			prevHead, _ := n.codec.Encode(hb, t-1)
			rename := map[string]string{newHead: prevHead}
			for _, tr := range transitions[hb] {
				newTail, _ := n.codec.Encode(tr.base, t-tr.offset)
				prevTail, _ := n.codec.Encode(tr.base, t-tr.offset-1)
				rename[newTail] = prevTail
			}
			dst, err := out.CPT(newHead)
			if err != nil {
				return nil, err
			}
			src, err := out.CPT(prevHead)
			if err != nil {
				return nil, err
			}
			if err := dst.FillFrom(src, rename); err != nil {
				return nil, fmt.Errorf("propagating cpt of %s: %w", newHead, err)
			}
		}
	}

	n.logger.Info("unrolled template", "horizon", n.k, "slices", slices,
		"nodes", out.Size(), "arcs", len(out.Arcs()))
	return out, nil
}

// transitionPattern collects the template's transition arcs: every arc whose
// head lies in the final slice k-1, recorded per head base as (tail base,
// offset) pairs. Pairs are deduplicated and sorted so the resulting edge set
// depends only on the pattern, never on enumeration order.
func (n *Network) transitionPattern() (map[string][]tailRef, []string, error) {
	arcs, err := n.Arcs()
	if err != nil {
		return nil, nil, err
	}
	transitions := make(map[string][]tailRef)
	for _, a := range arcs {
		if a.Head.Slice != n.k-1 {
			continue
		}
		transitions[a.Head.Name] = append(transitions[a.Head.Name],
			tailRef{base: a.Tail.Name, offset: a.Offset()})
	}
	headBases := make([]string, 0, len(transitions))
	for hb, refs := range transitions {
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].base != refs[j].base {
				return refs[i].base < refs[j].base
			}
			return refs[i].offset < refs[j].offset
		})
		deduped := refs[:0]
		for i, r := range refs {
			if i == 0 || r != refs[i-1] {
				deduped = append(deduped, r)
			}
		}
		transitions[hb] = deduped
		headBases = append(headBases, hb)
	}
	sort.Strings(headBases)
	return transitions, headBases, nil
}
