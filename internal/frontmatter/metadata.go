package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Metadata is a decoded post header. It keeps the YAML node tree so keys the
// tool does not know about survive a rewrite with their order and values.
type Metadata struct {
	root *yaml.Node // always a mapping node
}

// Fields is the typed view of the header keys postkit reads.
type Fields struct {
	Title      string
	Date       string
	Categories []string
	Tags       []string
	Image      string
}

// New returns empty metadata.
func New() *Metadata {
	return &Metadata{root: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
}

// Decode parses a raw header. Blank or comment-only headers decode to empty
// metadata; anything other than a mapping is ErrMalformed.
func Decode(header []byte) (*Metadata, error) {
	if len(bytes.TrimSpace(header)) == 0 {
		return New(), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(header, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return New(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, ErrMalformed
	}
	dedupe(root)
	return &Metadata{root: root}, nil
}

// dedupe collapses repeated top-level keys the way the site generator reads
// them: the last value wins, kept at the position of the first occurrence.
func dedupe(root *yaml.Node) {
	index := make(map[string]int, len(root.Content)/2)
	out := root.Content[:0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if j, ok := index[key.Value]; ok {
			out[j+1] = val
			continue
		}
		index[key.Value] = len(out)
		out = append(out, key, val)
	}
	root.Content = out
}

// Len returns the number of top-level keys.
func (m *Metadata) Len() int {
	if m == nil || m.root == nil {
		return 0
	}
	return len(m.root.Content) / 2
}

// Keys returns the top-level keys in file order.
func (m *Metadata) Keys() []string {
	keys := make([]string, 0, m.Len())
	for i := 0; i+1 < m.size(); i += 2 {
		keys = append(keys, m.root.Content[i].Value)
	}
	return keys
}

// Has reports whether key is present, even with a null value.
func (m *Metadata) Has(key string) bool {
	return m.value(key) != nil
}

// String returns the scalar value of key, or "" when the key is missing,
// null, or not a scalar.
func (m *Metadata) String(key string) string {
	v := m.value(key)
	if v == nil || v.Kind != yaml.ScalarNode || v.Tag == "!!null" {
		return ""
	}
	return v.Value
}

// Strings returns key as a list. A scalar becomes a single element list so
// "categories: aws" and "categories: [aws]" read the same.
func (m *Metadata) Strings(key string) []string {
	v := m.value(key)
	if v == nil {
		return nil
	}
	switch v.Kind {
	case yaml.ScalarNode:
		if v.Tag == "!!null" || v.Value == "" {
			return nil
		}
		return []string{v.Value}
	case yaml.SequenceNode:
		out := make([]string, 0, len(v.Content))
		for _, item := range v.Content {
			if item.Kind == yaml.ScalarNode && item.Value != "" {
				out = append(out, item.Value)
			}
		}
		return out
	}
	return nil
}

// Image returns the image field.
func (m *Metadata) Image() string {
	return m.String("image")
}

// Fields returns the typed view of the header.
func (m *Metadata) Fields() Fields {
	return Fields{
		Title:      m.String("title"),
		Date:       m.String("date"),
		Categories: m.Strings("categories"),
		Tags:       m.Strings("tags"),
		Image:      m.Image(),
	}
}

// SetString sets key to a string scalar, appending the key when missing.
func (m *Metadata) SetString(key, value string) {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
	for i := 0; i+1 < m.size(); i += 2 {
		if m.root.Content[i].Value == key {
			m.root.Content[i+1] = node
			return
		}
	}
	m.root.Content = append(m.root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		node,
	)
}

// Marshal encodes the header with two-space indentation. Empty metadata
// encodes to nothing so the header stays a bare pair of markers.
func (m *Metadata) Marshal() ([]byte, error) {
	if m.Len() == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m.root); err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}
	return buf.Bytes(), nil
}

func (m *Metadata) size() int {
	if m == nil || m.root == nil {
		return 0
	}
	return len(m.root.Content)
}

func (m *Metadata) value(key string) *yaml.Node {
	for i := 0; i+1 < m.size(); i += 2 {
		if m.root.Content[i].Value == key {
			return m.root.Content[i+1]
		}
	}
	return nil
}
