package catalog

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// blockElements start a new line when rendered as text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "blockquote": true, "pre": true, "tr": true,
}

// DescriptionText renders the HTML description of a detail record as plain
// text for the terminal
func DescriptionText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return strings.TrimSpace(htmlContent)
	}

	var b strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			}
			if blockElements[n.Data] {
				b.WriteString("\n")
			}
			if n.Data == "li" {
				b.WriteString("- ")
			}
		}

		if n.Type == html.TextNode {
			b.WriteString(whitespaceRegex.ReplaceAllString(n.Data, " "))
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] && n.Data != "br" {
			b.WriteString("\n")
		}
	}
	walk(doc)

	lines := strings.Split(b.String(), "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.TrimSpace(blankLinesRegex.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))
}
