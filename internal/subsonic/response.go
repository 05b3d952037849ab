package subsonic

import (
	"fmt"
	"io"
	"strings"
)

const (
	// Version is the protocol version announced in every response.
	Version = "1.16.1"
	// Namespace is the XML namespace of the response document.
	Namespace = "http://subsonic.org/restapi"
	// ServerType identifies this server to clients that read the OpenSubsonic fields.
	ServerType = "tonearm"

	rootName = "subsonic-response"
)

// ServerVersion is reported alongside [ServerType]; the cmd package overrides it at startup.
var ServerVersion = "dev"

// Status of a response envelope.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Response is the envelope around an optional body.
//
// When Inline is set the body's fields are placed directly in the envelope instead of under the body's name.
type Response struct {
	Status  Status
	Version string
	Body    *Node
	Inline  bool
}

// OK wraps body in a successful envelope.
func OK(body *Node) Response {
	return Response{Status: StatusOK, Version: Version, Body: body}
}

// OKInline is a successful envelope whose body fields sit directly in the envelope,
// for operations whose payload is a bare list.
func OKInline(body *Node) Response {
	return Response{Status: StatusOK, Version: Version, Body: body, Inline: true}
}

// Empty is a successful envelope with no body, as returned by ping.
func Empty() Response {
	return Response{Status: StatusOK, Version: Version}
}

// Failure wraps a protocol error.
func Failure(err *Error) Response {
	body := NewNode("error").Attr("code", int(err.Code)).Attr("message", err.Message)
	return Response{Status: StatusFailed, Version: Version, Body: body}
}

// envelope returns the root node with status fields followed by the body.
func (r Response) envelope() *Node {
	version := r.Version
	if version == "" {
		version = Version
	}
	root := NewNode(rootName).
		Attr("status", string(r.Status)).
		Attr("version", version).
		Attr("type", ServerType).
		Attr("serverVersion", ServerVersion).
		Attr("openSubsonic", true)
	switch {
	case r.Body == nil:
	case r.Inline:
		root.fields = append(root.fields, r.Body.fields...)
	default:
		root.Child(r.Body.Name, r.Body)
	}
	return root
}

// Format selects the wire encoding.
type Format string

const (
	FormatXML   Format = "xml"
	FormatJSON  Format = "json"
	FormatJSONP Format = "jsonp"
)

// ParseFormat maps the f query parameter to a [Format]. Unknown values fall back to XML.
func ParseFormat(f string) Format {
	switch Format(strings.ToLower(f)) {
	case FormatJSON:
		return FormatJSON
	case FormatJSONP:
		return FormatJSONP
	default:
		return FormatXML
	}
}

// ContentType returns the Content-Type header for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatJSONP:
		return "application/javascript"
	default:
		return "text/xml; charset=utf-8"
	}
}

// Render writes resp to w. A JSONP request without a usable callback name is written as plain JSON.
func Render(w io.Writer, resp Response, format Format, callback string) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, resp)
	case FormatJSONP:
		if !validCallback(callback) {
			return renderJSON(w, resp)
		}
		if _, err := fmt.Fprintf(w, "%s(", callback); err != nil {
			return err
		}
		if err := renderJSON(w, resp); err != nil {
			return err
		}
		_, err := io.WriteString(w, ");")
		return err
	default:
		return renderXML(w, resp)
	}
}

// validCallback accepts dotted JavaScript identifiers only.
func validCallback(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || r == '.':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
