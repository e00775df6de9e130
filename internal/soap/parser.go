package soap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Element is one raw <element> entry from a SOAP function signature,
// before classification.
type Element struct {
	Name      string
	Type      string
	MinOccurs string
	MaxOccurs string
}

// ParseFunctionXML extracts the flat parameter list from a WSDL-style
// schema fragment. Namespace prefixes on tags and type attributes are
// ignored; <element> entries inside a <sequence> block are collected
// wherever the sequence sits in the tree. A fragment without a
// sequence yields an empty list, not an error.
func ParseFunctionXML(fragment string) ([]Element, error) {
	dec := xml.NewDecoder(strings.NewReader(fragment))
	elements := make([]Element, 0)
	depth := 0

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse function xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sequence":
				depth++
			case "element":
				if depth > 0 {
					elements = append(elements, elementFromAttrs(t.Attr))
				}
			}
		case xml.EndElement:
			if t.Name.Local == "sequence" && depth > 0 {
				depth--
			}
		}
	}
	return elements, nil
}

func elementFromAttrs(attrs []xml.Attr) Element {
	el := Element{Type: "string", MinOccurs: "1", MaxOccurs: "1"}
	for _, a := range attrs {
		switch a.Name.Local {
		case "name":
			el.Name = a.Value
		case "type":
			el.Type = stripPrefix(a.Value)
		case "minOccurs":
			el.MinOccurs = a.Value
		case "maxOccurs":
			el.MaxOccurs = a.Value
		}
	}
	return el
}

// stripPrefix drops an XML namespace prefix from an attribute value,
// e.g. "s:string" -> "string".
func stripPrefix(v string) string {
	if i := strings.LastIndex(v, ":"); i >= 0 {
		return v[i+1:]
	}
	return v
}
