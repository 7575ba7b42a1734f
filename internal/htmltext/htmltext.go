// Package htmltext hyphenates the text content of HTML documents and
// fragments, leaving markup, attributes and code-like elements alone.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conneroisu/hyphen/internal/errors"
	"github.com/conneroisu/hyphen/internal/hyphenate"
)

// Resolver returns the dictionary for the lang attribute in effect, or nil
// to leave the text untouched. lang is empty outside any lang attribute.
type Resolver func(lang string) hyphenate.Dictionary

// skipped elements keep their text verbatim.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Pre:      true,
	atom.Code:     true,
	atom.Kbd:      true,
	atom.Samp:     true,
	atom.Textarea: true,
}

// Hyphenate inserts mark into every text node of src using dict.
func Hyphenate(src string, dict hyphenate.Dictionary, mark string) (string, error) {
	return Rewrite(src, func(string) hyphenate.Dictionary { return dict }, mark)
}

// Rewrite inserts mark into text nodes, choosing the dictionary per node from
// the nearest lang attribute. Entity marks such as "&shy;" are decoded before
// insertion.
func Rewrite(src string, resolve Resolver, mark string) (string, error) {
	mark = html.UnescapeString(mark)

	nodes, err := parse(src)
	if err != nil {
		return "", errors.NewParseError(errors.CodeHTMLParse, "parsing HTML", err)
	}

	for _, n := range nodes {
		walk(n, "", resolve, mark)
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", errors.NewInternalError(errors.CodeInternal, "rendering HTML", err)
		}
	}
	return buf.String(), nil
}

func parse(src string) ([]*html.Node, error) {
	if isDocument(src) {
		doc, err := html.Parse(strings.NewReader(src))
		if err != nil {
			return nil, err
		}
		return []*html.Node{doc}, nil
	}
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	return html.ParseFragment(strings.NewReader(src), body)
}

func isDocument(src string) bool {
	head := strings.ToLower(strings.TrimSpace(src))
	return strings.HasPrefix(head, "<!doctype") || strings.HasPrefix(head, "<html")
}

func walk(n *html.Node, lang string, resolve Resolver, mark string) {
	switch n.Type {
	case html.TextNode:
		if dict := resolve(lang); dict != nil {
			n.Data = hyphenate.HyphenateWith(n.Data, dict, mark)
		}
		return
	case html.ElementNode:
		if skipped[n.DataAtom] {
			return
		}
		if v, ok := attr(n, "lang"); ok {
			lang = v
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, lang, resolve, mark)
	}
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
