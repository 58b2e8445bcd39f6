package dsl_test

import (
	"errors"
	"testing"

	"github.com/ByLCY/nexal/dsl"
)

const sampleDSL = `
// 法式双栏简历
design Modern v1 {
  tokens {
    accent: #0F62FE
    font-pairing: "classic"
    base-size: 10pt
    line-height-body: 1.5x
  }

  layout { preset: SIDEBAR; sidebar: right; photo: true
    order: [
      summary, experience
      education
    ]
  }

  locale { paper: A4; region: FR }

  labels {
    experience: "Expérience"
  }

  section experience { accent: #C0392B }
  element experience.company { text: #111 }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Name != "Modern" || doc.Version != "v1" {
		t.Fatalf("unexpected header %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 6 {
		t.Fatalf("expected 6 sections, got %d", len(doc.Sections))
	}
	kinds := []string{"tokens", "layout", "locale", "labels", "section", "element"}
	for i, k := range kinds {
		if got := doc.Sections[i].Kind(); got != k {
			t.Fatalf("section %d: expected %s, got %s", i, k, got)
		}
	}

	tokens := doc.Sections[0].Tokens
	if len(tokens.Statements) != 4 {
		t.Fatalf("expected 4 token statements, got %d", len(tokens.Statements))
	}
	if c := tokens.Statements[0].Value.Color; c == nil || *c != "#0F62FE" {
		t.Fatalf("accent color not captured: %+v", tokens.Statements[0].Value)
	}
	if s := tokens.Statements[1].Value.String; s == nil || string(*s) != "classic" {
		t.Fatalf("font pairing not unquoted: %+v", tokens.Statements[1].Value)
	}

	layout := doc.Sections[1].Layout
	order := layout.Statements[len(layout.Statements)-1]
	if order.Key != "order" || order.Value.Array == nil || len(order.Value.Array.Values) != 3 {
		t.Fatalf("order array not parsed: %+v", order)
	}

	el := doc.Sections[5].Element
	if el.Section != "experience" || el.Element != "company" {
		t.Fatalf("unexpected element target %s.%s", el.Section, el.Element)
	}
}

func TestCompileDocument(t *testing.T) {
	spec, err := dsl.CompileString(sampleDSL)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if spec.Base.Accent == nil || spec.Base.Accent.Hex() != "#0F62FE" {
		t.Fatalf("accent not compiled: %+v", spec.Base.Accent)
	}
	if spec.Base.FontPairing == nil || *spec.Base.FontPairing != "classic" {
		t.Fatalf("pairing not compiled")
	}
	if spec.Base.BaseSize == nil || *spec.Base.BaseSize != 10 {
		t.Fatalf("base size not compiled")
	}
	if spec.Base.BodyLineHeight == nil || *spec.Base.BodyLineHeight != 1.5 {
		t.Fatalf("line height not compiled")
	}
	if spec.Layout.Preset != "SIDEBAR" || spec.Layout.SidebarSide != "right" {
		t.Fatalf("layout not compiled: %+v", spec.Layout)
	}
	if spec.Layout.ShowPhoto == nil || !*spec.Layout.ShowPhoto {
		t.Fatalf("photo flag not compiled")
	}
	want := []string{"summary", "experience", "education"}
	if len(spec.Layout.SectionOrder) != len(want) {
		t.Fatalf("order mismatch: %v", spec.Layout.SectionOrder)
	}
	for i := range want {
		if spec.Layout.SectionOrder[i] != want[i] {
			t.Fatalf("order mismatch: %v", spec.Layout.SectionOrder)
		}
	}
	if spec.Locale.PaperFormat != "A4" || spec.Locale.Region != "FR" {
		t.Fatalf("locale not compiled: %+v", spec.Locale)
	}
	if spec.Labels["experience"] != "Expérience" {
		t.Fatalf("label not compiled: %v", spec.Labels)
	}
	if o, ok := spec.Sections["experience"]; !ok || o.Accent == nil || o.Accent.Hex() != "#C0392B" {
		t.Fatalf("section override not compiled: %+v", spec.Sections)
	}
	if o, ok := spec.Elements["experience.company"]; !ok || o.Text == nil || o.Text.Hex() != "#111111" {
		t.Fatalf("element override not compiled: %+v", spec.Elements)
	}
}

func TestCompileAbsoluteLineHeight(t *testing.T) {
	spec, err := dsl.CompileString(`design X v1 { tokens { base-size: 10pt; line-height-heading: 12pt } }`)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if got := *spec.Base.HeadingLineHeight; got < 1.199 || got > 1.201 {
		t.Fatalf("expected 1.2 multiplier, got %v", got)
	}
}

func TestCompileErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  error
	}{
		{"unknown token", `design X v1 { tokens { shadow: #000 } }`, dsl.ErrUnknownKey},
		{"unknown locale", `design X v1 { locale { timezone: UTC } }`, dsl.ErrUnknownKey},
		{"bad color", `design X v1 { tokens { accent: 12pt } }`, dsl.ErrBadValue},
		{"bad size", `design X v1 { tokens { base-size: large } }`, dsl.ErrBadValue},
		{"bad photo", `design X v1 { layout { photo: maybe } }`, dsl.ErrBadValue},
		{"order scalar", `design X v1 { layout { order: summary } }`, dsl.ErrBadValue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := dsl.CompileString(tc.input)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	if _, err := dsl.ParseString(`design X v1 { tokens { accent #000 } }`); err == nil {
		t.Fatalf("expected parse error for missing colon")
	}
}
