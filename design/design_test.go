package design

import (
	"reflect"
	"testing"
)

func ptr[T any](v T) *T { return &v }

func sampleSpec() Spec {
	red := Color{R: 192, G: 57, B: 43}
	return Spec{
		Base: Override{FontPairing: ptr("classic"), BaseSize: ptr(11.0)},
		Sections: map[string]Override{
			"experience": {Accent: &red, BodyLineHeight: ptr(1.5)},
		},
		Elements: map[string]Override{
			"experience.company": {Text: ptr(Color{R: 17, G: 17, B: 17})},
			"broken":             {Text: ptr(Color{})},
		},
		Layout: LayoutSpec{Preset: "sidebar", HeaderStyle: "Band", PhotoScale: 3},
		Labels: map[string]string{"experience": "Expérience"},
	}
}

func TestResolveLayersOverrides(t *testing.T) {
	c := Resolve(sampleSpec(), nil)
	if c.Tokens.Typography.HeadingFamily != "Merriweather" || c.Tokens.Typography.BodyFamily != "Source Sans 3" {
		t.Fatalf("字体组合未生效: %+v", c.Tokens.Typography)
	}
	if c.Tokens.Typography.BaseSize != 11 {
		t.Fatalf("基础字号未生效: %g", c.Tokens.Typography.BaseSize)
	}
	exp := c.ForSection("experience")
	if exp.Colors.Accent != (Color{R: 192, G: 57, B: 43}) || exp.Typography.LineHeights.Body != 1.5 {
		t.Fatalf("分节覆盖未生效: %+v", exp)
	}
	if exp.Typography.BaseSize != 11 {
		t.Fatalf("分节应继承基础令牌: %+v", exp.Typography)
	}
	company := c.ForElement("experience", "company")
	if company.Colors.Text != (Color{R: 17, G: 17, B: 17}) || company.Colors.Accent != exp.Colors.Accent {
		t.Fatalf("元素覆盖应叠加在分节之上: %+v", company.Colors)
	}
	if got := c.ForElement("education", "school"); got != c.Tokens {
		t.Fatalf("无覆盖的元素应得到基础令牌")
	}
	if c.Layout.Preset != "SIDEBAR" || c.Layout.HeaderStyle != "band" || c.Layout.PhotoScale != 1.5 || !c.Layout.ShowPhoto {
		t.Fatalf("layout 解析错误: %+v", c.Layout)
	}
	if c.Label("experience") != "Expérience" || c.Label("skills") != "Skills" {
		t.Fatalf("labels 合并错误: %+v", c.Labels)
	}
	if _, ok := c.Elements["broken"]; ok || len(c.Fallbacks) != 1 {
		t.Fatalf("非法元素键应被忽略并记录: %v", c.Fallbacks)
	}
}

func TestUnknownPairingFallsBackToSans(t *testing.T) {
	c := Resolve(Spec{Base: Override{FontPairing: ptr("comic")}}, nil)
	if c.Tokens.Typography.Pairing != DefaultPairing || c.Tokens.Typography.BodyFamily != "Helvetica" {
		t.Fatalf("未知组合应回退 sans: %+v", c.Tokens.Typography)
	}
	caps := &Capabilities{Families: []string{"Helvetica"}}
	c = Resolve(Spec{Base: Override{FontPairing: ptr("elegant")}}, caps)
	if c.Tokens.Typography.Pairing != DefaultPairing {
		t.Fatalf("不可用的组合应回退 sans: %+v", c.Tokens.Typography)
	}
}

func TestResolveIsPureAndDoesNotMutateSpec(t *testing.T) {
	spec := sampleSpec()
	before := sampleSpec()
	a := Resolve(spec, nil)
	b := Resolve(spec, nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("两次解析结果不同")
	}
	if !reflect.DeepEqual(spec, before) {
		t.Fatalf("Resolve 修改了输入规格")
	}
}

func TestForSectionReturnsCopy(t *testing.T) {
	c := Resolve(sampleSpec(), nil)
	s := c.ForSection("skills")
	s.Colors.Accent = Color{}
	if c.Tokens.Colors.Accent == (Color{}) {
		t.Fatalf("ForSection 返回值与基础令牌存在别名")
	}
	e := c.ForSection("experience")
	e.Typography.BaseSize = 99
	if c.Sections["experience"].Typography.BaseSize == 99 {
		t.Fatalf("ForSection 返回值与分节令牌存在别名")
	}
}

func TestEmptyOverridesAreSkipped(t *testing.T) {
	c := Resolve(Spec{
		Sections: map[string]Override{"skills": {}},
		Elements: map[string]Override{"skills.name": {}},
	}, nil)
	if _, ok := c.Sections["skills"]; ok {
		t.Fatalf("empty section override should not be stored")
	}
	if _, ok := c.Elements["skills.name"]; ok {
		t.Fatalf("empty element override should not be stored")
	}
	if c.ForElement("skills", "name") != c.Tokens {
		t.Fatalf("empty layers should resolve to the base tokens")
	}
	if !(Override{}).IsZero() || (Override{BaseSize: ptr(10.0)}).IsZero() {
		t.Fatalf("IsZero mismatch")
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#fff":      {R: 255, G: 255, B: 255},
		"#0F62FE":   {R: 15, G: 98, B: 254},
		"#0F62FE80": {R: 15, G: 98, B: 254},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %+v err=%v want %+v", in, got, err, want)
		}
	}
	if _, err := ParseColor("#12"); err == nil {
		t.Fatalf("非法颜色应返回错误")
	}
	if got := (Color{R: 15, G: 98, B: 254}).Hex(); got != "#0F62FE" {
		t.Fatalf("Hex: %s", got)
	}
}
