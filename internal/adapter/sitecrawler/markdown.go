package sitecrawler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/user/skillgen-service/pkg/utils"
)

// Page is the converted form of one HTML document.
type Page struct {
	Title    string
	Markdown string
	Links    []string // absolute, normalized, in document order
}

const stripSelector = "script, style, noscript, template, svg, nav, footer, aside, iframe, form"

// ExtractPage converts an HTML document into markdown-like text and collects
// the links it points to.
func ExtractPage(pageURL, htmlContent string) (*Page, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	page := &Page{Title: strings.TrimSpace(doc.Find("title").First().Text())}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		abs, err := ToLink(base, href)
		if err != nil {
			return
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		page.Links = append(page.Links, abs)
	})

	doc.Find(stripSelector).Remove()

	root := doc.Find("main").First()
	if root.Length() == 0 {
		root = doc.Find("article").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var w mdWriter
	for _, n := range root.Nodes {
		w.children(n)
	}
	page.Markdown = w.String()
	return page, nil
}

// ToLink resolves href against base and normalizes it. Only http(s) links are accepted.
func ToLink(base *url.URL, href string) (string, error) {
	raw, err := utils.ToAbsoluteURL(base, href)
	if err != nil {
		return "", err
	}
	u, err := utils.ParseAbsoluteURL(raw)
	if err != nil {
		return "", err
	}
	return utils.NormalizeURL(u), nil
}

// mdWriter renders a DOM subtree as blocks separated by blank lines.
type mdWriter struct {
	blocks []string
	inline strings.Builder
}

func (w *mdWriter) String() string {
	w.flush()
	return strings.Join(w.blocks, "\n\n")
}

func (w *mdWriter) flush() {
	text := collapseSpace(w.inline.String())
	w.inline.Reset()
	if text != "" {
		w.blocks = append(w.blocks, text)
	}
}

func (w *mdWriter) block(s string) {
	w.flush()
	if s = strings.TrimRight(s, " \n"); strings.TrimSpace(s) != "" {
		w.blocks = append(w.blocks, s)
	}
}

func (w *mdWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *mdWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline.WriteString(n.Data)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		w.block(strings.Repeat("#", level) + " " + collapseSpace(textOf(n)))
	case atom.P:
		w.block(collapseSpace(inlineText(n)))
	case atom.Pre:
		w.block("```" + codeLanguage(n) + "\n" + strings.Trim(textOf(n), "\n") + "\n```")
	case atom.Ul, atom.Ol:
		w.block(listText(n, 0))
	case atom.Blockquote:
		var inner mdWriter
		inner.children(n)
		lines := strings.Split(inner.String(), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimRight("> "+l, " ")
		}
		w.block(strings.Join(lines, "\n"))
	case atom.Table:
		w.block(tableText(n))
	case atom.Br:
		w.inline.WriteString(" ")
	case atom.Hr:
		w.flush()
	case atom.Code:
		w.inline.WriteString("`" + textOf(n) + "`")
	case atom.Div, atom.Section, atom.Article, atom.Main, atom.Dl, atom.Figure, atom.Details:
		w.flush()
		w.children(n)
		w.flush()
	default:
		w.children(n)
	}
}

func listText(n *html.Node, depth int) string {
	var lines []string
	ordinal := 0
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		ordinal++
		marker := "-"
		if n.DataAtom == atom.Ol {
			marker = strconv.Itoa(ordinal) + "."
		}

		var own strings.Builder
		var nested []string
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Ul || c.DataAtom == atom.Ol) {
				nested = append(nested, listText(c, depth+1))
				continue
			}
			own.WriteString(renderInline(c))
		}
		lines = append(lines, strings.Repeat("  ", depth)+marker+" "+collapseSpace(own.String()))
		lines = append(lines, nested...)
	}
	return strings.Join(lines, "\n")
}

func tableText(n *html.Node) string {
	var rows []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if c.DataAtom == atom.Tr {
				var cells []string
				for td := c.FirstChild; td != nil; td = td.NextSibling {
					if td.Type == html.ElementNode && (td.DataAtom == atom.Td || td.DataAtom == atom.Th) {
						cells = append(cells, collapseSpace(inlineText(td)))
					}
				}
				if len(cells) > 0 {
					rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
				}
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return strings.Join(rows, "\n")
}

func inlineText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(renderInline(c))
	}
	return b.String()
}

func renderInline(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return n.Data
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Code:
			return "`" + textOf(n) + "`"
		case atom.Br:
			return " "
		}
		return inlineText(n)
	}
	return ""
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// codeLanguage reads a "language-xxx" class from the block or its inner <code>.
func codeLanguage(pre *html.Node) string {
	for _, n := range []*html.Node{pre, pre.FirstChild} {
		if n == nil || n.Type != html.ElementNode {
			continue
		}
		for _, a := range n.Attr {
			if a.Key != "class" {
				continue
			}
			for _, cls := range strings.Fields(a.Val) {
				if lang, ok := strings.CutPrefix(cls, "language-"); ok {
					return lang
				}
			}
		}
	}
	return ""
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
