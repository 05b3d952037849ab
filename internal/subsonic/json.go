package subsonic

import (
	"bytes"
	"io"

	"github.com/goccy/go-json"
)

// object is a JSON object that keeps its keys in insertion order.
type object []member

type member struct {
	key   string
	value any
}

func (o object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func renderJSON(w io.Writer, resp Response) error {
	doc := object{{key: rootName, value: toObject(resp.envelope())}}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func toObject(n *Node) object {
	o := make(object, 0, len(n.fields))
	for _, f := range n.fields {
		switch f.Kind {
		case KindGroup:
			items := make([]any, len(f.Items))
			for i, item := range f.Items {
				items[i] = toValue(item)
			}
			o = append(o, member{key: f.Key, value: items})
		default:
			o = append(o, member{key: f.Key, value: toValue(f.Value)})
		}
	}
	return o
}

func toValue(v any) any {
	if child, ok := v.(*Node); ok {
		return toObject(child)
	}
	return v
}
