package subsonic

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

func renderXML(w io.Writer, resp Response) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	root := resp.envelope()
	start := xml.StartElement{
		Name: xml.Name{Local: rootName},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: Namespace}},
	}
	if err := encodeNode(enc, start, root); err != nil {
		return err
	}
	return enc.Flush()
}

// encodeNode writes n as an element. Attributes are collected first since XML requires them on the start tag.
func encodeNode(enc *xml.Encoder, start xml.StartElement, n *Node) error {
	for _, f := range n.fields {
		if f.Kind == KindAttr {
			start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: f.Key}, Value: formatScalar(f.Value)})
		}
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}

	for _, f := range n.fields {
		switch f.Kind {
		case KindText:
			if err := enc.EncodeToken(xml.CharData(formatScalar(f.Value))); err != nil {
				return err
			}
		case KindElem:
			if err := encodeItem(enc, f.Key, f.Value); err != nil {
				return err
			}
		case KindGroup:
			for _, item := range f.Items {
				if err := encodeItem(enc, f.Key, item); err != nil {
					return err
				}
			}
		}
	}

	return enc.EncodeToken(start.End())
}

func encodeItem(enc *xml.Encoder, key string, v any) error {
	start := xml.StartElement{Name: xml.Name{Local: key}}
	if child, ok := v.(*Node); ok {
		return encodeNode(enc, start, child)
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(formatScalar(v))); err != nil {
		return err
	}
	return enc.EncodeToken(start.End())
}

// formatScalar renders a scalar the way XML attributes and character data expect.
func formatScalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
