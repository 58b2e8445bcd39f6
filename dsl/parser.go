// Package dsl 解析 .nexal 设计文件。
//
//	design Modern v1 {
//	  tokens { accent: #0F62FE; font-pairing: "classic"; base-size: 10pt }
//	  layout { preset: SIDEBAR; sidebar: right; order: [summary, experience] }
//	  locale { paper: A4; region: FR }
//	  labels { experience: "Expérience" }
//	  section experience { accent: #C0392B }
//	  element experience.company { text: #111111 }
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	designParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a design file.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'design' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one top-level block of a design file.
type Section struct {
	Pos      lexer.Position   `parser:"" json:"-"`
	Tokens   *Block           `parser:"  'tokens' @@"`
	Layout   *Block           `parser:"| 'layout' @@"`
	Locale   *Block           `parser:"| 'locale' @@"`
	Labels   *Block           `parser:"| 'labels' @@"`
	Override *SectionOverride `parser:"| @@"`
	Element  *ElementOverride `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Tokens != nil:
		return "tokens"
	case s.Layout != nil:
		return "layout"
	case s.Locale != nil:
		return "locale"
	case s.Labels != nil:
		return "labels"
	case s.Override != nil:
		return "section"
	case s.Element != nil:
		return "element"
	default:
		return "unknown"
	}
}

// SectionOverride overrides tokens for one CV section.
type SectionOverride struct {
	Name  string `parser:"'section' @Ident"`
	Block *Block `parser:"@@"`
}

// ElementOverride overrides tokens for one element inside a section.
type ElementOverride struct {
	Section string `parser:"'element' @Ident"`
	Element string `parser:"'.' @Ident"`
	Block   *Block `parser:"@@"`
}

// Block is a delimited list of assignments.
type Block struct {
	Statements []*Assignment `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' Newline* @@"`
}

// Value represents generic property values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Ident  *string        `parser:"| @Ident"`
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( ( ',' | Newline+ ) Newline* @@ )* )? Newline* ']'"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Text returns the scalar form of a value; arrays yield "".
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Parse parses a design file from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return designParser.Parse("", r)
}

// ParseString parses a design file from a string.
func ParseString(input string) (*Document, error) {
	return designParser.ParseString("", input)
}
