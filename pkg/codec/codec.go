package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// JujuCodec decodes the machine-readable output of juju commands.
type JujuCodec struct {
	strict bool
}

func NewJujuCodec() *JujuCodec {
	return &JujuCodec{}
}

// Strict makes unknown JSON fields an error.
func (c *JujuCodec) Strict() *JujuCodec {
	return &JujuCodec{strict: true}
}

func (c *JujuCodec) Unmarshal(data []byte, format Format, v interface{}) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty %s document", format)
	}

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		if c.strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("failed to decode json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to decode yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
	return nil
}

// UnmarshalKeyed decodes juju output of the form {"<name>": {...}} and returns the entry for key.
func UnmarshalKeyed[T any](c *JujuCodec, data []byte, format Format, key string) (*T, error) {
	var doc map[string]T
	if err := c.Unmarshal(data, format, &doc); err != nil {
		return nil, err
	}
	entry, ok := doc[key]
	if !ok {
		return nil, fmt.Errorf("%s not in output (found: %v)", key, SortedKeys(doc))
	}
	return &entry, nil
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func MarshalIndent(v interface{}) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode json: %w", err)
	}
	return string(b), nil
}
