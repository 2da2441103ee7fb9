package mapping

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrInvalidMapping is returned for documents that are not a flat string to string mapping.
var ErrInvalidMapping = errors.New("invalid mapping document")

// Entry pairs a reference type name with an obfuscated type name.
type Entry struct {
	Reference  string
	Obfuscated string
}

// Mapping is an ordered set of entries keyed by reference name.
type Mapping struct {
	entries []Entry
	index   map[string]int
}

// New creates a Mapping holding entries, in order.
func New(entries ...Entry) *Mapping {
	m := &Mapping{}
	for _, e := range entries {
		m.Set(e.Reference, e.Obfuscated)
	}

	return m
}

// FromMap creates a Mapping from m, sorted by reference name.
func FromMap(m map[string]string) *Mapping {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := &Mapping{}
	for _, k := range keys {
		out.Set(k, m[k])
	}

	return out
}

// Set records ref -> obs. Setting an existing reference keeps its position.
func (m *Mapping) Set(ref, obs string) {
	if m.index == nil {
		m.index = make(map[string]int)
	}

	if i, ok := m.index[ref]; ok {
		m.entries[i].Obfuscated = obs
		return
	}

	m.index[ref] = len(m.entries)
	m.entries = append(m.entries, Entry{Reference: ref, Obfuscated: obs})
}

// Get returns the obfuscated name recorded for ref.
func (m *Mapping) Get(ref string) (string, bool) {
	i, ok := m.index[ref]
	if !ok {
		return "", false
	}

	return m.entries[i].Obfuscated, true
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	return len(m.entries)
}

// Entries returns the entries in order.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)

	return out
}

// Map returns the entries as a plain map.
func (m *Mapping) Map() map[string]string {
	out := make(map[string]string, len(m.entries))
	for _, e := range m.entries {
		out[e.Reference] = e.Obfuscated
	}

	return out
}

// MarshalJSON writes the entries as one JSON object, in order.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(e.Reference)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(e.Obfuscated)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON reads one JSON object of strings, keeping key order.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: expected an object, got %v", ErrInvalidMapping, tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}

		key := tok.(string) // object keys are always strings

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("%w: value of %q: %v", ErrInvalidMapping, key, err)
		}

		m.Set(key, value)
	}

	_, err = dec.Token()

	return err
}

// MarshalYAML writes the entries as one YAML mapping, in order.
func (m *Mapping) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	for _, e := range m.entries {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Reference},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Obfuscated},
		)
	}

	return node, nil
}

// UnmarshalYAML reads one YAML mapping of scalars, keeping key order.
func (m *Mapping) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidMapping, value.Line)
	}

	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: line %d: expected a scalar pair", ErrInvalidMapping, k.Line)
		}

		m.Set(k.Value, v.Value)
	}

	return nil
}
