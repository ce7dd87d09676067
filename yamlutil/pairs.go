// Package yamlutil reads ordered key/value pairs from YAML documents.
//
// Two layouts are accepted. A mapping keeps key order but not duplicate keys:
//
//	q: search terms
//	page: 2
//	tags: [go, url]
//
// A sequence of mappings allows the same key more than once:
//
//	- tag: go
//	- tag: [url, http]
//	- empty: null
package yamlutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lorien/weblib/formutil"
)

// ErrUnsupportedLayout indicates the document is neither a mapping nor a
// sequence of mappings, or a value is a nested mapping.
var ErrUnsupportedLayout = errors.New("unsupported yaml layout")

// LoadPairs reads pairs from the YAML file at path.
func LoadPairs(path string) ([]formutil.Pair, error) {
	// #nosec G304 -- path is supplied by the CLI user
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	pairs, err := DecodePairs(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return pairs, nil
}

// DecodePairs reads pairs from a YAML document, preserving document order.
// Scalars decode to string, int, float64, bool or nil; sequences decode to
// []any. An empty document yields no pairs.
func DecodePairs(r io.Reader) ([]formutil.Pair, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.MappingNode:
		return appendMapping(nil, root)
	case yaml.SequenceNode:
		var pairs []formutil.Pair
		for i, item := range root.Content {
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%w: item %d (line %d) is not a mapping", ErrUnsupportedLayout, i, item.Line)
			}
			var err error
			if pairs, err = appendMapping(pairs, item); err != nil {
				return nil, err
			}
		}
		return pairs, nil
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("%w: line %d", ErrUnsupportedLayout, root.Line)
}

// appendMapping appends the key/value pairs of a mapping node in order.
func appendMapping(pairs []formutil.Pair, m *yaml.Node) ([]formutil.Pair, error) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, value := m.Content[i], m.Content[i+1]
		v, err := decodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key.Value, err)
		}
		pairs = append(pairs, formutil.Pair{Key: key.Value, Value: v})
	}
	return pairs, nil
}

func decodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		var v any
		if err := n.Decode(&v); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return v, nil
	case yaml.SequenceNode:
		items := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			v, err := decodeValue(item)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.AliasNode:
		return decodeValue(n.Alias)
	}
	return nil, fmt.Errorf("%w: nested mapping at line %d", ErrUnsupportedLayout, n.Line)
}
