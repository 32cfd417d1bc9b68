// Package fieldmap models extracted field mappings as a tagged variant tree
// and flattens them into (path, value) entries for evidence linking.
//
// JSON object key order is preserved through decoding so flattening, and
// everything downstream of it, stays deterministic.
package fieldmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrUnsupportedField marks a leaf value the linker cannot match (anything
// that is not an object, array, string, number, bool, or null).
var ErrUnsupportedField = errors.New("unsupported field value")

// Kind tags the variant held by a Node.
type Kind int

const (
	KindScalar Kind = iota
	KindObject
	KindArray
)

// Member is one key/value pair of an object node, in stored order.
type Member struct {
	Key   string
	Value Node
}

// Node is a tagged Object/Array/Scalar variant of a decoded field mapping.
// Scalars are carried pre-stringified in canonical form; null and empty
// strings decode to empty scalars, which the flattener skips. Unsupported
// marks leaves the matcher cannot handle; they flatten into entries the
// linker reports as skipped instead of failing the request.
type Node struct {
	Kind        Kind
	Scalar      string
	Unsupported bool
	Members     []Member // object members, insertion order
	Items       []Node   // array elements
}

// Decode parses a JSON field mapping into a Node tree, preserving object key
// order. The input must be a single JSON value.
func Decode(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := decodeValue(dec)
	if err != nil {
		return Node{}, err
	}
	// Trailing content means the mapping was not a single document.
	if dec.More() {
		return Node{}, fmt.Errorf("trailing data after field mapping")
	}
	return node, nil
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, fmt.Errorf("decoding field mapping: %w", err)
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (Node, error) {
	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
		return Node{}, fmt.Errorf("unexpected delimiter %q", v)
	case string:
		return Node{Kind: KindScalar, Scalar: v}, nil
	case json.Number:
		return Node{Kind: KindScalar, Scalar: canonicalNumber(v)}, nil
	case bool:
		return Node{Kind: KindScalar, Scalar: strconv.FormatBool(v)}, nil
	case nil:
		// null: no evidence requested, same as an empty string.
		return Node{Kind: KindScalar}, nil
	default:
		return Node{}, fmt.Errorf("token %v: %w", tok, ErrUnsupportedField)
	}
}

func decodeObject(dec *json.Decoder) (Node, error) {
	node := Node{Kind: KindObject}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Node{}, fmt.Errorf("decoding object key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return Node{}, fmt.Errorf("object key %v is not a string", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Node{}, err
		}
		node.Members = append(node.Members, Member{Key: key, Value: val})
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return Node{}, fmt.Errorf("decoding object end: %w", err)
	}
	return node, nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	node := Node{Kind: KindArray}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return Node{}, err
		}
		node.Items = append(node.Items, val)
	}
	if _, err := dec.Token(); err != nil {
		return Node{}, fmt.Errorf("decoding array end: %w", err)
	}
	return node, nil
}

// FromValue builds a Node from an in-memory JSON-like structure, for callers
// holding decoded values rather than raw bytes. Map keys are visited in
// sorted order since Go maps carry no insertion order. Leaves of types the
// matcher cannot handle become unsupported scalars rather than errors, so
// one bad leaf never aborts its siblings.
func FromValue(v any) Node {
	switch val := v.(type) {
	case nil:
		return Node{Kind: KindScalar}
	case string:
		return Node{Kind: KindScalar, Scalar: val}
	case bool:
		return Node{Kind: KindScalar, Scalar: strconv.FormatBool(val)}
	case json.Number:
		return Node{Kind: KindScalar, Scalar: canonicalNumber(val)}
	case int:
		return Node{Kind: KindScalar, Scalar: strconv.Itoa(val)}
	case int64:
		return Node{Kind: KindScalar, Scalar: strconv.FormatInt(val, 10)}
	case float64:
		return Node{Kind: KindScalar, Scalar: canonicalNumber(json.Number(strconv.FormatFloat(val, 'g', -1, 64)))}
	case []any:
		node := Node{Kind: KindArray, Items: make([]Node, 0, len(val))}
		for _, item := range val {
			node.Items = append(node.Items, FromValue(item))
		}
		return node
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		node := Node{Kind: KindObject, Members: make([]Member, 0, len(keys))}
		for _, k := range keys {
			node.Members = append(node.Members, Member{Key: k, Value: FromValue(val[k])})
		}
		return node
	default:
		return Node{Kind: KindScalar, Unsupported: true, Scalar: fmt.Sprintf("%T", v)}
	}
}

// canonicalNumber renders integers without a decimal point and floats with
// their minimal representation.
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	// Out-of-range literals keep their source form.
	return n.String()
}
