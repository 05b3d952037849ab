package subsonic

import (
	"time"
)

// Kind tags how a [Field] is rendered.
type Kind int

const (
	KindAttr Kind = iota
	KindText
	KindElem
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindAttr:
		return "attr"
	case KindText:
		return "text"
	case KindElem:
		return "elem"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Field is one ordered child of a [Node].
//
// Value holds a scalar for attributes, text and scalar elements, or a *Node for nested elements.
// Items holds the members of a group, each a *Node or a scalar.
type Field struct {
	Key   string
	Kind  Kind
	Value any
	Items []any
}

// Node is a named response element with ordered fields.
type Node struct {
	Name   string
	fields []Field
}

// NewNode creates an empty node. The name is used when the node is the response body.
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// Fields returns the node's fields in insertion order.
func (n *Node) Fields() []Field {
	return n.fields
}

// Field returns the first field with the given key.
func (n *Node) Field(key string) (Field, bool) {
	for _, f := range n.fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Attr adds a scalar attribute.
func (n *Node) Attr(key string, v any) *Node {
	n.fields = append(n.fields, Field{Key: key, Kind: KindAttr, Value: scalar(v)})
	return n
}

// AttrIf adds a scalar attribute only when ok is true.
func (n *Node) AttrIf(ok bool, key string, v any) *Node {
	if ok {
		return n.Attr(key, v)
	}
	return n
}

// Text sets the node's character data. JSON renders it under key.
func (n *Node) Text(key string, v any) *Node {
	n.fields = append(n.fields, Field{Key: key, Kind: KindText, Value: scalar(v)})
	return n
}

// Elem adds a scalar as a child element rather than an attribute.
func (n *Node) Elem(key string, v any) *Node {
	n.fields = append(n.fields, Field{Key: key, Kind: KindElem, Value: scalar(v)})
	return n
}

// Child adds a nested element.
func (n *Node) Child(key string, child *Node) *Node {
	n.fields = append(n.fields, Field{Key: key, Kind: KindElem, Value: child})
	return n
}

// Group adds a repeated element. An empty group still renders as an empty JSON array.
func (n *Node) Group(key string, children ...*Node) *Node {
	items := make([]any, len(children))
	for i, c := range children {
		items[i] = c
	}
	n.fields = append(n.fields, Field{Key: key, Kind: KindGroup, Items: items})
	return n
}

// Values adds a repeated scalar element.
func (n *Node) Values(key string, vals ...any) *Node {
	items := make([]any, len(vals))
	for i, v := range vals {
		items[i] = scalar(v)
	}
	n.fields = append(n.fields, Field{Key: key, Kind: KindGroup, Items: items})
	return n
}

// TimeLayout is the timestamp format used in responses.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// scalar normalizes values that have no natural scalar form.
func scalar(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.UTC().Format(TimeLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(TimeLayout)
	case int32:
		return int64(t)
	case uint:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}
