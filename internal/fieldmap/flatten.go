package fieldmap

import (
	"strconv"
	"strings"
)

// Segment is one step of a field path: an object key or an array index.
type Segment struct {
	Key   string
	Index int
	IsKey bool
}

// Path identifies a leaf value's location in the nested field mapping.
type Path []Segment

// String renders the path in the review UI's dotted/bracketed form,
// e.g. "seller.name" or "delivery_documents.required_documents[2]".
func (p Path) String() string {
	var b strings.Builder
	for _, seg := range p {
		if seg.IsKey {
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Key)
		} else {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		}
	}
	return b.String()
}

// Entry is one flattened field: its path and stringified value.
type Entry struct {
	Path        Path
	Value       string
	Unsupported bool
}

// Flatten walks the node tree depth-first and returns the leaf entries in
// deterministic order: object keys in stored order, array indices ascending.
// Empty scalar values (empty strings, nulls) are dropped; no evidence is
// requested for them. Unsupported leaves are kept so the linker can report
// them as skipped. Each call produces a fresh traversal.
func Flatten(root Node) []Entry {
	var entries []Entry
	walk(root, nil, &entries)
	return entries
}

func walk(n Node, path Path, out *[]Entry) {
	switch n.Kind {
	case KindObject:
		for _, m := range n.Members {
			walk(m.Value, append(path, Segment{Key: m.Key, IsKey: true}), out)
		}
	case KindArray:
		for i, item := range n.Items {
			walk(item, append(path, Segment{Index: i}), out)
		}
	case KindScalar:
		if n.Unsupported {
			*out = append(*out, Entry{Path: clonePath(path), Unsupported: true})
			return
		}
		if n.Scalar == "" {
			return
		}
		*out = append(*out, Entry{Path: clonePath(path), Value: n.Scalar})
	}
}

// clonePath copies the shared append buffer so entries keep stable paths.
func clonePath(p Path) Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}
