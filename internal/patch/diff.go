package patch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Op is a patch operation code.
type Op string

const (
	OpAdd     Op = "add"
	OpRemove  Op = "remove"
	OpReplace Op = "replace"
)

// Operation is one self-contained change. Value is nil for remove.
type Operation struct {
	Op    Op     `json:"op"`
	Path  string `json:"path"`
	Value *Node  `json:"value,omitempty"`
}

// UnmarshalJSON keeps an explicit null value distinct from an absent one:
// "value": null decodes to a null node, while a missing value field leaves
// Value nil. Without this a remove and an add-of-null would collapse into
// the same wire shape.
func (o *Operation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Op    Op              `json:"op"`
		Path  string          `json:"path"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Op = raw.Op
	o.Path = raw.Path
	o.Value = nil
	if len(raw.Value) > 0 {
		var n Node
		if err := n.UnmarshalJSON(raw.Value); err != nil {
			return err
		}
		o.Value = &n
	}
	return nil
}

// Validate rejects malformed operations before they enter the pipeline.
// Unknown op codes are caller errors, never a runtime condition downstream
// components tolerate.
func (o Operation) Validate() error {
	switch o.Op {
	case OpAdd, OpReplace:
		if o.Value == nil {
			return fmt.Errorf("%w (op=%s path=%s)", ErrMissingValue, o.Op, o.Path)
		}
	case OpRemove:
		if o.Value != nil {
			return fmt.Errorf("%w (path=%s)", ErrUnexpectedValue, o.Path)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, string(o.Op))
	}
	if o.Path == "" {
		return fmt.Errorf("%w (op=%s)", ErrMissingPath, o.Op)
	}
	return nil
}

// Patch is an ordered change set. Order is the deterministic traversal order
// of Diff; individual operations are self-contained.
type Patch []Operation

// Validate checks every operation in order and reports the first failure.
func (p Patch) Validate() error {
	for i, op := range p {
		if err := op.Validate(); err != nil {
			return fmt.Errorf("operation %d: %w", i, err)
		}
	}
	return nil
}

// escapeSegment applies JSON-pointer-style escaping so that literal "~" and
// "/" inside a key cannot be confused with separators.
func escapeSegment(seg string) string {
	seg = strings.ReplaceAll(seg, "~", "~0")
	return strings.ReplaceAll(seg, "/", "~1")
}

// encodePath renders a segment list as a slash-joined pointer. The root path
// with no segments is the single "/".
func encodePath(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteByte('/')
		sb.WriteString(escapeSegment(seg))
	}
	return sb.String()
}

// Diff computes the ordered change set transforming current into desired.
//
// Object keys are traversed in lexicographic order so equal inputs always
// produce byte-identical patches regardless of map iteration order.
// Diff(x, x) is empty for every tree x.
func Diff(current, desired Node) Patch {
	var ops Patch
	diffNodes(current, desired, nil, &ops)
	return ops
}

func diffNodes(current, desired Node, segments []string, ops *Patch) {
	// Kind mismatch replaces the whole subtree; no recursion past this point.
	if current.Kind() != desired.Kind() {
		*ops = append(*ops, replaceOp(segments, desired))
		return
	}

	switch current.Kind() {
	case KindObject:
		for _, key := range current.Keys() {
			if _, ok := desired.Field(key); !ok {
				*ops = append(*ops, Operation{
					Op:   OpRemove,
					Path: encodePath(append(segments, key)),
				})
			}
		}
		for _, key := range desired.Keys() {
			desiredChild, _ := desired.Field(key)
			currentChild, ok := current.Field(key)
			if !ok {
				child := desiredChild
				*ops = append(*ops, Operation{
					Op:    OpAdd,
					Path:  encodePath(append(segments, key)),
					Value: &child,
				})
				continue
			}
			diffNodes(currentChild, desiredChild, append(segments, key), ops)
		}
	case KindArray:
		// Sequences are atomic: any difference replaces the whole sequence.
		if !current.Equal(desired) {
			*ops = append(*ops, replaceOp(segments, desired))
		}
	default:
		if !current.Equal(desired) {
			*ops = append(*ops, replaceOp(segments, desired))
		}
	}
}

func replaceOp(segments []string, desired Node) Operation {
	value := desired
	return Operation{
		Op:    OpReplace,
		Path:  encodePath(segments),
		Value: &value,
	}
}
