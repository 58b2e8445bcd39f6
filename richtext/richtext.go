// Package richtext 将内容中的 Markdown / HTML 片段压平成可测量的纯文本。
package richtext

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Format 是片段的标记语言。
type Format int

const (
	FormatPlain Format = iota
	FormatMarkdown
	FormatHTML
)

var (
	htmlTag      = regexp.MustCompile(`<(?:[a-zA-Z][a-zA-Z0-9]*)(?:\s[^<>]*)?/?>|</[a-zA-Z][a-zA-Z0-9]*>`)
	markdownMark = regexp.MustCompile("(\\*\\*|__|\\*[^*\\s]|`|\\[[^\\]]*\\]\\(|^#{1,6} |^\\s*[-*+] )")
	md           = goldmark.New()
)

// Detect 猜测片段格式。
func Detect(s string) Format {
	switch {
	case htmlTag.MatchString(s):
		return FormatHTML
	case markdownMark.MatchString(s):
		return FormatMarkdown
	default:
		return FormatPlain
	}
}

// Plain 去除标记并规范化：NFC、空白合并、首尾去空。
func Plain(s string) string {
	switch Detect(s) {
	case FormatHTML:
		s = fromHTML(s)
	case FormatMarkdown:
		s = fromMarkdown(s)
	}
	return Collapse(norm.NFC.String(s))
}

// Collapse 将连续空白合并为单个空格。
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Transform 应用 text-transform，仅影响测量与绘制，不修改内容模型。
func Transform(s, transform string) string {
	switch strings.ToLower(transform) {
	case "uppercase":
		return cases.Upper(language.Und).String(s)
	case "lowercase":
		return cases.Lower(language.Und).String(s)
	case "capitalize":
		return cases.Title(language.Und, cases.NoLower).String(s)
	default:
		return s
	}
}

func fromMarkdown(source string) string {
	src := []byte(source)
	doc := md.Parser().Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				b.Write(node.Label(src))
			}
		default:
			// 块级节点之间补一个空格，避免段落首尾粘连
			if !entering && n.Type() == ast.TypeBlock {
				b.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func fromHTML(source string) string {
	root, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return htmlTag.ReplaceAllString(source, " ")
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			case "br", "p", "div", "li", "ul", "ol", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteByte(' ')
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && (n.Data == "p" || n.Data == "li" || n.Data == "div") {
			b.WriteByte(' ')
		}
	}
	walk(root)
	return b.String()
}
