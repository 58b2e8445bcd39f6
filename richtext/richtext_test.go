package richtext

import "testing"

func TestDetect(t *testing.T) {
	cases := map[string]Format{
		"Led a team of five":          FormatPlain,
		"Shipped **v2** on time":      FormatMarkdown,
		"See [site](https://x.dev)":   FormatMarkdown,
		"Built <b>fast</b> pipelines": FormatHTML,
		"a < b and c > d":             FormatPlain,
	}
	for in, want := range cases {
		if got := Detect(in); got != want {
			t.Fatalf("%q: expected %d, got %d", in, want, got)
		}
	}
}

func TestPlainMarkdown(t *testing.T) {
	got := Plain("Shipped **v2** of the\n_billing_ service")
	if got != "Shipped v2 of the billing service" {
		t.Fatalf("unexpected markdown flattening %q", got)
	}
	got = Plain("See [the site](https://x.dev) for `code`")
	if got != "See the site for code" {
		t.Fatalf("unexpected link flattening %q", got)
	}
}

func TestPlainHTML(t *testing.T) {
	got := Plain("<p>Built <b>fast</b> pipelines</p><p>Cut&nbsp;costs</p><script>x()</script>")
	if got != "Built fast pipelines Cut costs" && got != "Built fast pipelines Cut costs" {
		t.Fatalf("unexpected html flattening %q", got)
	}
	got = Plain("<ul><li>one</li><li>two</li></ul>")
	if got != "one two" {
		t.Fatalf("unexpected list flattening %q", got)
	}
}

func TestPlainNormalizes(t *testing.T) {
	// e + combining acute accent
	got := Plain("  Cafe\u0301   au   lait ")
	if got != "Caf\u00e9 au lait" {
		t.Fatalf("expected NFC and collapsed whitespace, got %q", got)
	}
}

func TestTransform(t *testing.T) {
	if got := Transform("Experience", "uppercase"); got != "EXPERIENCE" {
		t.Fatalf("unexpected uppercase %q", got)
	}
	if got := Transform("senior engineer", "capitalize"); got != "Senior Engineer" {
		t.Fatalf("unexpected capitalize %q", got)
	}
	if got := Transform("Keep", "none"); got != "Keep" {
		t.Fatalf("unknown transform should be identity, got %q", got)
	}
}
