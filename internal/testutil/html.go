package testutil

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Input describes a rendered form control.
type Input struct {
	Name     string
	Type     string
	Value    string
	Disabled bool
}

// Form is a parsed <form> element with its controls in document order.
type Form struct {
	ID     string
	Action string
	Method string
	Inputs []Input
	Submit *Input
}

// Field returns the first control named name.
func (f Form) Field(name string) (Input, bool) {
	for _, in := range f.Inputs {
		if in.Name == name {
			return in, true
		}
	}
	return Input{}, false
}

// Fields returns every control named name, which matters for disabled inputs mirrored by hidden fields.
func (f Form) Fields(name string) []Input {
	var out []Input
	for _, in := range f.Inputs {
		if in.Name == name {
			out = append(out, in)
		}
	}
	return out
}

// ParseForms extracts all forms from an HTML document.
func ParseForms(r io.Reader) ([]Form, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var forms []Form
	var walk func(n *html.Node, cur int)
	walk = func(n *html.Node, cur int) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "form":
				forms = append(forms, Form{
					ID:     attr(n, "id"),
					Action: attr(n, "action"),
					Method: strings.ToUpper(attr(n, "method")),
				})
				cur = len(forms) - 1
			case "input", "textarea", "select":
				if cur >= 0 {
					in := inputFrom(n)
					if in.Type == "submit" {
						forms[cur].Submit = &in
					} else {
						forms[cur].Inputs = append(forms[cur].Inputs, in)
					}
				}
			case "button":
				if typ := attr(n, "type"); cur >= 0 && (typ == "" || typ == "submit") {
					in := inputFrom(n)
					in.Type = "submit"
					forms[cur].Submit = &in
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, cur)
		}
	}
	walk(doc, -1)
	return forms, nil
}

// FindForm returns the form whose action equals action.
func FindForm(r io.Reader, action string) (Form, bool, error) {
	forms, err := ParseForms(r)
	if err != nil {
		return Form{}, false, err
	}
	for _, f := range forms {
		if f.Action == action {
			return f, true, nil
		}
	}
	return Form{}, false, nil
}

// TextContent returns the concatenated text of the first element with the given id.
func TextContent(r io.Reader, id string) (string, bool, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", false, err
	}
	n := findByID(doc, id)
	if n == nil {
		return "", false, nil
	}
	var b strings.Builder
	collectText(n, &b)
	return strings.Join(strings.Fields(b.String()), " "), true, nil
}

func inputFrom(n *html.Node) Input {
	typ := attr(n, "type")
	if typ == "" && n.Data == "input" {
		typ = "text"
	}
	_, disabled := attrOK(n, "disabled")
	return Input{
		Name:     attr(n, "name"),
		Type:     typ,
		Value:    attr(n, "value"),
		Disabled: disabled,
	}
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
