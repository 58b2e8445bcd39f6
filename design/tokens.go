package design

import (
	"fmt"
	"strconv"
	"strings"
)

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// Hex 返回 #RRGGBB 形式。
func (c Color) Hex() string { return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B) }

// MarshalYAML/UnmarshalYAML 让 YAML 设计文件可以直接写 "#0F62FE"。
func (c Color) MarshalYAML() (interface{}, error) { return c.Hex(), nil }

func (c *Color) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor 解析 #RGB、#RRGGBB 与 #RRGGBBAA（忽略 alpha）。
func ParseColor(value string) (Color, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(v) {
	case 3:
		v = strings.Repeat(v[0:1], 2) + strings.Repeat(v[1:2], 2) + strings.Repeat(v[2:3], 2)
	case 6, 8:
		v = v[:6]
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: int(n >> 16 & 0xFF), G: int(n >> 8 & 0xFF), B: int(n & 0xFF)}, nil
}

func mustColor(v string) Color {
	c, err := ParseColor(v)
	if err != nil {
		panic(err)
	}
	return c
}

// Colors 是四个语义色。
type Colors struct {
	Accent     Color `json:"accent"`
	Background Color `json:"background"`
	Text       Color `json:"text"`
	Muted      Color `json:"muted"`
}

// LineHeights 是三种角色的行高倍数：标题、主栏正文、侧栏正文。
type LineHeights struct {
	Heading float64 `json:"heading"`
	Body    float64 `json:"body"`
	Sidebar float64 `json:"sidebar"`
}

// Typography 是解析后的字体设置。
type Typography struct {
	Pairing       string      `json:"pairing"`
	HeadingFamily string      `json:"headingFamily"`
	BodyFamily    string      `json:"bodyFamily"`
	BaseSize      float64     `json:"baseSize"`
	LineHeights   LineHeights `json:"lineHeights"`
}

// Border 是分节标题下划线等边框样式。
type Border struct {
	Style string  `json:"style"` // none/solid/dashed
	Width float64 `json:"width"`
}

// Bullet 是列表项目符号与缩进。
type Bullet struct {
	Glyph  string  `json:"glyph"`
	Indent float64 `json:"indent"`
}

// Tokens 是任意节点可引用的一份完整样式令牌。不含引用类型，按值复制即深拷贝。
type Tokens struct {
	Colors     Colors     `json:"colors"`
	Typography Typography `json:"typography"`
	Border     Border     `json:"border"`
	Bullet     Bullet     `json:"bullet"`
}

// Override 是可叠加的一层令牌，nil 字段表示不覆盖。
type Override struct {
	Accent            *Color   `json:"accent,omitempty" yaml:"accent"`
	Background        *Color   `json:"background,omitempty" yaml:"background"`
	Text              *Color   `json:"text,omitempty" yaml:"text"`
	Muted             *Color   `json:"muted,omitempty" yaml:"muted"`
	FontPairing       *string  `json:"fontPairing,omitempty" yaml:"font_pairing"`
	BaseSize          *float64 `json:"baseSize,omitempty" yaml:"base_size"`
	HeadingLineHeight *float64 `json:"headingLineHeight,omitempty" yaml:"heading_line_height"`
	BodyLineHeight    *float64 `json:"bodyLineHeight,omitempty" yaml:"body_line_height"`
	SidebarLineHeight *float64 `json:"sidebarLineHeight,omitempty" yaml:"sidebar_line_height"`
	BorderStyle       *string  `json:"borderStyle,omitempty" yaml:"border_style"`
	BorderWidth       *float64 `json:"borderWidth,omitempty" yaml:"border_width"`
	BulletGlyph       *string  `json:"bulletGlyph,omitempty" yaml:"bullet"`
	BulletIndent      *float64 `json:"bulletIndent,omitempty" yaml:"bullet_indent"`
}

// IsZero 报告该层是否没有任何覆盖。
func (o Override) IsZero() bool { return o == Override{} }

// Pairing 是标题/正文字体族组合。
type Pairing struct {
	Heading string
	Body    string
}

// DefaultPairing 是未知组合的回退。
const DefaultPairing = "sans"

// DefaultPairings 返回内置字体组合表的一份新拷贝。
func DefaultPairings() map[string]Pairing {
	return map[string]Pairing{
		"sans":      {Heading: "Helvetica", Body: "Helvetica"},
		"modern":    {Heading: "Inter", Body: "Inter"},
		"classic":   {Heading: "Merriweather", Body: "Source Sans 3"},
		"elegant":   {Heading: "Playfair Display", Body: "Lato"},
		"technical": {Heading: "JetBrains Mono", Body: "Inter"},
	}
}

func defaultTokens() Tokens {
	return Tokens{
		Colors: Colors{
			Accent:     mustColor("#2563EB"),
			Background: mustColor("#FFFFFF"),
			Text:       mustColor("#1F2937"),
			Muted:      mustColor("#6B7280"),
		},
		Typography: Typography{
			Pairing:       DefaultPairing,
			HeadingFamily: "Helvetica",
			BodyFamily:    "Helvetica",
			BaseSize:      10,
			LineHeights:   LineHeights{Heading: 1.2, Body: 1.4, Sidebar: 1.3},
		},
		Border: Border{Style: "none"},
		Bullet: Bullet{Glyph: "•", Indent: 10},
	}
}

// DefaultLabels 是分节标题的默认文案。
func DefaultLabels() map[string]string {
	return map[string]string{
		"identity":   "",
		"contact":    "Contact",
		"summary":    "Summary",
		"experience": "Experience",
		"education":  "Education",
		"skills":     "Skills",
		"languages":  "Languages",
	}
}
