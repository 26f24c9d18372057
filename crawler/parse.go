package crawler

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/tashasho/MCP-Server-BNV/scoring"
)

// Parse extracts every div.company-card from an html document. Missing
// elements inside a card become empty fields.
func Parse(r io.Reader, sectors map[string][]string) ([]scoring.CompanyProfile, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var companies []scoring.CompanyProfile
	for _, card := range findAll(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && hasClass(n, "company-card")
	}) {
		companies = append(companies, profileFromCard(card, sectors))
	}

	if len(companies) == 0 {
		return nil, ErrNoCompanies
	}
	return companies, nil
}

func profileFromCard(card *html.Node, sectors map[string][]string) scoring.CompanyProfile {
	p := scoring.CompanyProfile{
		Name:        textOf(findFirst(card, isElement(atom.H2, ""))),
		Description: textOf(findFirst(card, isElement(atom.P, "description"))),
		Founders:    textOf(findFirst(card, isElement(atom.Div, "founders"))),
		Problem:     textOf(findFirst(card, isElement(atom.Div, "problem"))),
		Solution:    textOf(findFirst(card, isElement(atom.Div, "solution"))),
		USP:         textOf(findFirst(card, isElement(atom.Div, "usp"))),
	}
	p.Sectors = scoring.IdentifySectors(p.Text(scoring.FieldDescription, scoring.FieldProblem, scoring.FieldSolution), sectors)
	return p
}

func isElement(a atom.Atom, class string) func(*html.Node) bool {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.DataAtom != a {
			return false
		}
		return class == "" || hasClass(n, class)
	}
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// findAll collects matching nodes without descending into a match.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return out
}

func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if n := findFirst(c, match); n != nil {
			return n
		}
	}
	return nil
}

// textOf returns the trimmed text segments of n joined by single spaces.
func textOf(n *html.Node) string {
	if n == nil {
		return ""
	}
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, strings.Fields(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}
