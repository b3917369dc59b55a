package firehose

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// BannerPrefix starts the log line a programmer emits once it has listed its
// supported functions and is ready for commands.
const BannerPrefix = "INFO: End of supported functions"

// Response values.
const (
	ValueACK = "ACK"
	ValueNAK = "NAK"
)

// Kind classifies a target element.
type Kind int

const (
	// KindOther is well-formed XML that does not decide a command
	KindOther Kind = iota

	// KindACK is <response value="ACK">
	KindACK

	// KindNAK is <response value="NAK">
	KindNAK

	// KindLog is an informational <log>
	KindLog

	// KindBanner is the end-of-supported-functions log or literal text
	KindBanner
)

func (k Kind) String() string {
	switch k {
	case KindACK:
		return "ACK"
	case KindNAK:
		return "NAK"
	case KindLog:
		return "log"
	case KindBanner:
		return "banner"
	default:
		return "other"
	}
}

// Decisive reports whether the element ends a command exchange.
func (k Kind) Decisive() bool {
	return k == KindACK || k == KindNAK || k == KindBanner
}

// Response is one element received from the target.
type Response struct {
	// Kind classifies the element
	Kind Kind

	// Element is the tag name, empty for literal banner text
	Element string

	// Value is the value attribute, or the text for a literal banner
	Value string

	// Attrs holds every attribute of the element
	Attrs map[string]string
}

// Attr returns an attribute of the response.
func (r *Response) Attr(name string) (string, bool) {
	v, ok := r.Attrs[name]
	return v, ok
}

// Uint returns a numeric attribute of the response.
func (r *Response) Uint(name string) (uint64, bool) {
	v, ok := r.Attrs[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (r *Response) String() string {
	if r.Element == "" {
		return r.Value
	}
	return fmt.Sprintf("<%s value=%q>", r.Element, r.Value)
}

// xmlDeclaration starts every document the target sends.
var xmlDeclaration = []byte("<?xml")

// minMessageSize is the smallest message that can carry an element.
const minMessageSize = 4

// ParseMessage parses one bulk-in message into its elements, in order. A
// message may carry several concatenated documents. Literal text containing
// BannerPrefix outside any document is reported as a KindBanner response.
func ParseMessage(msg []byte) ([]*Response, error) {
	if len(msg) < minMessageSize {
		return nil, &ParseError{Fragment: string(msg), Err: fmt.Errorf("only read %d bytes", len(msg))}
	}

	var out []*Response
	for _, part := range splitDocuments(msg) {
		text := bytes.TrimSpace(bytes.Trim(part, "\x00"))
		if len(text) == 0 {
			continue
		}

		if text[0] != '<' {
			if bytes.Contains(text, []byte(BannerPrefix)) {
				out = append(out, &Response{Kind: KindBanner, Value: string(text)})
				continue
			}
			return nil, &ParseError{Fragment: string(text)}
		}

		responses, err := parseDocument(text)
		if err != nil {
			return nil, err
		}
		out = append(out, responses...)
	}

	if len(out) == 0 {
		return nil, &ParseError{Fragment: string(msg), Err: fmt.Errorf("no elements")}
	}
	return out, nil
}

// splitDocuments cuts msg before every XML declaration.
func splitDocuments(msg []byte) [][]byte {
	var parts [][]byte
	for {
		i := bytes.Index(msg[1:], xmlDeclaration)
		if i < 0 {
			return append(parts, msg)
		}
		parts = append(parts, msg[:i+1])
		msg = msg[i+1:]
	}
}

func parseDocument(text []byte) ([]*Response, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(text); err != nil {
		return nil, &ParseError{Fragment: string(text), Err: err}
	}

	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Fragment: string(text), Err: fmt.Errorf("no root element")}
	}

	elements := []*etree.Element{root}
	if children := root.ChildElements(); root.Tag == "data" && len(children) > 0 {
		elements = children
	}

	out := make([]*Response, 0, len(elements))
	for _, el := range elements {
		out = append(out, classify(el))
	}
	return out, nil
}

func classify(el *etree.Element) *Response {
	r := &Response{
		Element: el.Tag,
		Attrs:   make(map[string]string, len(el.Attr)),
	}
	for _, a := range el.Attr {
		r.Attrs[a.Key] = a.Value
	}
	r.Value = r.Attrs["value"]

	switch el.Tag {
	case "response":
		switch r.Value {
		case ValueACK:
			r.Kind = KindACK
		case ValueNAK:
			r.Kind = KindNAK
		}
	case "log":
		if strings.HasPrefix(r.Value, BannerPrefix) {
			r.Kind = KindBanner
		} else {
			r.Kind = KindLog
		}
	}
	return r
}
