package render

import (
	"fmt"
	"strconv"
	"strings"

	"proto-matcher/internal/signature"
)

// KindName returns the schema-level name of a signature kind.
func KindName(sig *signature.Signature) string {
	switch sig.Kind() {
	case signature.KindFieldSet:
		return "message"
	case signature.KindEnumValues:
		return "enum"
	case signature.KindMapEntry:
		return "map"
	case signature.KindAbsent:
		return "absent"
	case signature.KindRecursive:
		return "recursive"
	default:
		return sig.Kind().String()
	}
}

type node struct {
	label    string
	children []*node
}

func (n *node) add(label string) *node {
	child := &node{label: label}
	n.children = append(n.children, child)

	return child
}

func (n *node) write(b *strings.Builder, prefix string) {
	for i, child := range n.children {
		branch, indent := "├── ", "│   "
		if i == len(n.children)-1 {
			branch, indent = "└── ", "    "
		}

		b.WriteString(prefix + branch + child.label + "\n")
		child.write(b, prefix+indent)
	}
}

// Tree draws sig as an indented tree. Nested message levels are numbered and
// are not expanded beyond maxDepth when maxDepth is positive. depth is the
// deepest message level reached.
func Tree(sig *signature.Signature, maxDepth int) (text string, depth int) {
	root := &node{label: fmt.Sprintf("%s (%s)", KindName(sig), sig.ShortHash())}

	t := treeBuilder{maxDepth: maxDepth, depth: 1}
	t.grow(sig, root, 1)

	var b strings.Builder

	b.WriteString(root.label + "\n")
	root.write(&b, "")

	return b.String(), t.depth
}

type treeBuilder struct {
	maxDepth int
	depth    int
}

func (t *treeBuilder) grow(sig *signature.Signature, parent *node, depth int) {
	t.depth = max(t.depth, depth)

	switch sig.Kind() {
	case signature.KindFieldSet:
		for _, c := range sig.Counts() {
			t.entry(c.Entry, c.Count, "", parent, depth)
		}
	case signature.KindMapEntry:
		key, _ := sig.MapKey()
		value, _ := sig.MapValue()
		t.entry(key, 1, "key: ", parent, depth)
		t.entry(value, 1, "value: ", parent, depth)
	case signature.KindEnumValues:
		parent.add(Ranges(sig.Values()))
	}
}

func (t *treeBuilder) entry(e signature.FieldEntry, count int, prefix string, parent *node, depth int) {
	suffix := ""
	if count > 1 {
		suffix = ": " + strconv.Itoa(count)
	}

	if !e.IsComposite() {
		parent.add(prefix + e.Label + suffix)
		return
	}

	isMessage := strings.HasSuffix(e.Label, "message")

	level := ""
	if isMessage {
		level = strconv.Itoa(depth) + " "
	}

	branch := parent.add(fmt.Sprintf("%s%s%s (%s)%s", prefix, level, e.Label, e.Nested.ShortHash(), suffix))

	if isMessage {
		if t.maxDepth > 0 && depth >= t.maxDepth {
			return
		}

		depth++
	}

	t.grow(e.Nested, branch, depth)
}

// Ranges collapses sorted distinct values into runs, e.g. "0-3, 7, 9-10".
func Ranges(values []int32) string {
	var parts []string

	for i := 0; i < len(values); {
		j := i
		for j+1 < len(values) && values[j+1] == values[j]+1 {
			j++
		}

		if i == j {
			parts = append(parts, strconv.FormatInt(int64(values[i]), 10))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", values[i], values[j]))
		}

		i = j + 1
	}

	return strings.Join(parts, ", ")
}
