package patch

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind discriminates the variants a config tree value can take.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one config tree value. The zero value is null.
type Node struct {
	kind Kind
	b    bool
	num  float64
	str  string
	arr  []Node
	obj  map[string]Node
}

func Null() Node                    { return Node{kind: KindNull} }
func Bool(v bool) Node              { return Node{kind: KindBool, b: v} }
func Number(v float64) Node         { return Node{kind: KindNumber, num: v} }
func String(v string) Node          { return Node{kind: KindString, str: v} }
func Array(items ...Node) Node      { return Node{kind: KindArray, arr: items} }
func Object(m map[string]Node) Node { return Node{kind: KindObject, obj: m} }

func (n Node) Kind() Kind { return n.kind }

// Keys returns the object keys in lexicographic order. Nil for non-objects.
func (n Node) Keys() []string {
	if n.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(n.obj))
	for k := range n.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Field returns the child node under key for object nodes.
func (n Node) Field(key string) (Node, bool) {
	if n.kind != KindObject {
		return Node{}, false
	}
	child, ok := n.obj[key]
	return child, ok
}

// Items returns the sequence elements for array nodes. Nil otherwise.
func (n Node) Items() []Node {
	if n.kind != KindArray {
		return nil
	}
	return n.arr
}

// Equal reports deep structural equality.
func (n Node) Equal(other Node) bool {
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindNull:
		return true
	case KindBool:
		return n.b == other.b
	case KindNumber:
		return n.num == other.num
	case KindString:
		return n.str == other.str
	case KindArray:
		if len(n.arr) != len(other.arr) {
			return false
		}
		for i := range n.arr {
			if !n.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(n.obj) != len(other.obj) {
			return false
		}
		for k, v := range n.obj {
			ov, ok := other.obj[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FromValue converts a decoded JSON value (nil, bool, float64, string,
// []any, map[string]any) into a Node.
func FromValue(v any) (Node, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(val), nil
	case float64:
		return Number(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return Node{}, fmt.Errorf("patch: invalid number %q: %w", val.String(), err)
		}
		return Number(f), nil
	case string:
		return String(val), nil
	case []any:
		items := make([]Node, 0, len(val))
		for i, item := range val {
			node, err := FromValue(item)
			if err != nil {
				return Node{}, fmt.Errorf("patch: element %d: %w", i, err)
			}
			items = append(items, node)
		}
		return Array(items...), nil
	case map[string]any:
		fields := make(map[string]Node, len(val))
		for k, item := range val {
			node, err := FromValue(item)
			if err != nil {
				return Node{}, fmt.Errorf("patch: key %q: %w", k, err)
			}
			fields[k] = node
		}
		return Object(fields), nil
	default:
		return Node{}, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// Value converts the node back to plain JSON-shaped Go values.
func (n Node) Value() any {
	switch n.kind {
	case KindNull:
		return nil
	case KindBool:
		return n.b
	case KindNumber:
		return n.num
	case KindString:
		return n.str
	case KindArray:
		out := make([]any, len(n.arr))
		for i, item := range n.arr {
			out[i] = item.Value()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(n.obj))
		for k, v := range n.obj {
			out[k] = v.Value()
		}
		return out
	default:
		return nil
	}
}

func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value())
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	node, err := FromValue(raw)
	if err != nil {
		return err
	}
	*n = node
	return nil
}
