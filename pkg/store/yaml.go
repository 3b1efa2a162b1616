package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/soundprediction/ktbn"
	"github.com/soundprediction/ktbn/pkg/engine"
	"github.com/soundprediction/ktbn/pkg/naming"
	"github.com/soundprediction/ktbn/pkg/types"
)

// Document is the on-disk form of a network.
type Document struct {
	Horizon   int           `yaml:"horizon"`
	Separator string        `yaml:"separator,omitempty"`
	Variables []VariableDoc `yaml:"variables"`
	Arcs      []types.Arc   `yaml:"arcs,omitempty"`
	CPTs      []CPTDoc      `yaml:"cpts,omitempty"`
}

// VariableDoc describes one atemporal variable.
type VariableDoc struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Labels      []string `yaml:"labels"`
}

// CPTDoc holds the positional cell values of one replica's table.
type CPTDoc struct {
	Variable types.UserKey `yaml:"variable"`
	Values   []float64     `yaml:"values"`
}

// Encode captures a template into a document, CPT values included.
func Encode(n *ktbn.Network) (*Document, error) {
	doc := &Document{
		Horizon:   n.Horizon(),
		Separator: n.Separator(),
	}
	for _, name := range n.Variables() {
		v, err := n.Variable(name)
		if err != nil {
			return nil, err
		}
		doc.Variables = append(doc.Variables, VariableDoc{
			Name:        v.Name,
			Description: v.Description,
			Labels:      v.Labels,
		})
	}
	arcs, err := n.Arcs()
	if err != nil {
		return nil, err
	}
	doc.Arcs = arcs
	for _, name := range n.Variables() {
		for t := 0; t < n.Horizon(); t++ {
			key := types.Key(name, t)
			tensor, err := n.CPT(key)
			if err != nil {
				return nil, err
			}
			values, err := tensor.Read(types.Evidence{})
			if err != nil {
				return nil, err
			}
			doc.CPTs = append(doc.CPTs, CPTDoc{Variable: key, Values: values})
		}
	}
	return doc, nil
}

// Decode rebuilds a template from a document. Arcs are replayed in document
// order, then CPT values restored positionally.
func Decode(doc *Document, opts ...ktbn.Option) (*ktbn.Network, error) {
	if doc.Separator != "" {
		opts = append([]ktbn.Option{ktbn.WithSeparator(doc.Separator)}, opts...)
	}
	n, err := ktbn.New(doc.Horizon, opts...)
	if err != nil {
		return nil, err
	}
	for _, v := range doc.Variables {
		desc := v.Description
		if desc == "" {
			desc = v.Name
		}
		if err := n.AddVariable(engine.Variable{
			Name:        v.Name,
			Description: desc,
			Labels:      v.Labels,
		}); err != nil {
			return nil, err
		}
	}
	for _, a := range doc.Arcs {
		if err := n.AddArc(a.Tail, a.Head); err != nil {
			return nil, err
		}
	}
	for _, c := range doc.CPTs {
		tensor, err := n.CPT(c.Variable)
		if err != nil {
			return nil, err
		}
		if err := tensor.FillValues(c.Values); err != nil {
			return nil, fmt.Errorf("cpt of %s: %w", c.Variable, err)
		}
	}
	return n, nil
}

// EncodeEngine captures a flat engine net, typically an unroll result, into a
// document. Node names are decoded through the codec; horizon is the highest
// slice seen plus one.
func EncodeEngine(net engine.BayesNet, codec naming.Codec) (*Document, error) {
	doc := &Document{Separator: codec.Separator()}
	seen := make(map[string]struct{})
	for _, a := range net.Arcs() {
		tailVar, err := net.Variable(a.Tail)
		if err != nil {
			return nil, err
		}
		headVar, err := net.Variable(a.Head)
		if err != nil {
			return nil, err
		}
		tail, err := codec.Decode(tailVar.Name)
		if err != nil {
			return nil, err
		}
		head, err := codec.Decode(headVar.Name)
		if err != nil {
			return nil, err
		}
		doc.Arcs = append(doc.Arcs, types.Arc{Tail: tail, Head: head})
	}
	for _, flat := range net.Names() {
		id, err := net.IDFromName(flat)
		if err != nil {
			return nil, err
		}
		v, err := net.Variable(id)
		if err != nil {
			return nil, err
		}
		key, err := codec.Decode(v.Name)
		if err != nil {
			return nil, err
		}
		if key.Slice+1 > doc.Horizon {
			doc.Horizon = key.Slice + 1
		}
		if _, dup := seen[key.Name]; !dup {
			seen[key.Name] = struct{}{}
			doc.Variables = append(doc.Variables, VariableDoc{
				Name:   key.Name,
				Labels: v.Labels,
			})
		}
		cpt, err := net.CPT(v.Name)
		if err != nil {
			return nil, err
		}
		values, err := cpt.Get(map[string]int{})
		if err != nil {
			return nil, err
		}
		doc.CPTs = append(doc.CPTs, CPTDoc{Variable: key, Values: values})
	}
	return doc, nil
}

// Save writes a template to path as YAML.
func Save(path string, n *ktbn.Network) error {
	doc, err := Encode(n)
	if err != nil {
		return err
	}
	return SaveDocument(path, doc)
}

// SaveDocument writes any document to path as YAML.
func SaveDocument(path string, doc *Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling network: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads a template from a YAML file.
func Load(path string, opts ...ktbn.Option) (*ktbn.Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return Decode(&doc, opts...)
}
