package html

import (
	"fmt"
	"html"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

var funcs = template.FuncMap{
	"str":      func(v any) string { return stringValue(v) },
	"heading":  heading,
	"extra":    extraAttrs,
	"debounce": func(n *domain.Node) int { return int(n.Props.Debounce.Milliseconds()) },
	"isEvent":  func(n *domain.Node) bool { return n.OnChange != nil || n.OnBlur != nil },
	"variant":  func(v string) string { return variantClass(v) },
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ", ")
	}
	return fmt.Sprint(v)
}

// heading returns the opening or closing tag for a header level in 1..6.
func heading(level int, closing bool) template.HTML {
	if level < 1 || level > 6 {
		level = 2
	}
	if closing {
		return template.HTML("</h" + strconv.Itoa(level) + ">")
	}
	return template.HTML("<h" + strconv.Itoa(level) + ">")
}

// extraAttrs passes unrecognized options through as data-x-* attributes.
// Names are reduced to [a-z0-9-] and values escaped.
func extraAttrs(n *domain.Node) template.HTMLAttr {
	if len(n.Extra) == 0 {
		return ""
	}
	names := make([]string, 0, len(n.Extra))
	for k := range n.Extra {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, k := range names {
		name := attrName(k)
		if name == "" {
			continue
		}
		fmt.Fprintf(&b, ` data-x-%s="%s"`, name, html.EscapeString(stringValue(n.Extra[k])))
	}
	return template.HTMLAttr(b.String())
}

func attrName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return b.String()
}

func variantClass(v string) string {
	if v == "" {
		return "arbor-default"
	}
	return "arbor-" + attrName(v)
}
