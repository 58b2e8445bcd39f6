// Package design 将分层的设计规格（基础令牌 → 分节覆盖 → 元素变体）合并为一份只读的 Computed。
package design

import (
	"sort"
	"strings"

	"github.com/ByLCY/nexal/diag"
)

// Spec 是调用方提供的设计规格。Resolve 不会修改它。
type Spec struct {
	Base     Override            `json:"base" yaml:"base"`
	Sections map[string]Override `json:"sections,omitempty" yaml:"sections"`
	// Elements 的键为 "section.element"，例如 "experience.company"。
	Elements   map[string]Override `json:"elements,omitempty" yaml:"elements"`
	Layout     LayoutSpec          `json:"layout" yaml:"layout"`
	Locale     LocaleSpec          `json:"locale" yaml:"locale"`
	Labels     map[string]string   `json:"labels,omitempty" yaml:"labels"`
	NameFormat string              `json:"nameFormat,omitempty" yaml:"name_format"`
}

// LayoutSpec 选择 preset 及版式细节。
type LayoutSpec struct {
	Preset       string   `json:"preset,omitempty" yaml:"preset"`
	HeaderStyle  string   `json:"headerStyle,omitempty" yaml:"header_style"`
	SidebarSide  string   `json:"sidebarSide,omitempty" yaml:"sidebar_side"`
	ShowPhoto    *bool    `json:"showPhoto,omitempty" yaml:"show_photo"`
	PhotoScale   float64  `json:"photoScale,omitempty" yaml:"photo_scale"`
	SectionOrder []string `json:"sectionOrder,omitempty" yaml:"section_order"`
}

// LocaleSpec 选择纸张与目标地区。
type LocaleSpec struct {
	PaperFormat string `json:"paperFormat,omitempty" yaml:"paper_format"`
	Region      string `json:"region,omitempty" yaml:"region"`
}

// Layout 是解析后的版式选择。
type Layout struct {
	Preset       string   `json:"preset"`
	HeaderStyle  string   `json:"headerStyle"` // plain/band
	SidebarSide  string   `json:"sidebarSide"`
	ShowPhoto    bool     `json:"showPhoto"`
	PhotoScale   float64  `json:"photoScale"`
	SectionOrder []string `json:"sectionOrder,omitempty"`
}

// Locale 是解析后的地区设置。
type Locale struct {
	PaperFormat string `json:"paperFormat"`
	Region      string `json:"region"`
}

// Computed 是一次渲染使用的扁平设计令牌，构造后只读。
type Computed struct {
	Tokens     Tokens            `json:"tokens"`
	Layout     Layout            `json:"layout"`
	Locale     Locale            `json:"locale"`
	Labels     map[string]string `json:"labels"`
	NameFormat string            `json:"nameFormat,omitempty"`
	Sections   map[string]Tokens `json:"sections,omitempty"`
	Elements   map[string]Tokens `json:"elements,omitempty"`
	Fallbacks  []string          `json:"fallbacks,omitempty"`
}

// ForSection 返回某分节的令牌快照；无覆盖的分节得到基础令牌的副本。
func (c Computed) ForSection(sectionID string) Tokens {
	if t, ok := c.Sections[sectionID]; ok {
		return t
	}
	return c.Tokens
}

// ForElement 返回 "section.element" 的令牌快照，缺省退回 ForSection。
func (c Computed) ForElement(sectionID, element string) Tokens {
	if t, ok := c.Elements[sectionID+"."+element]; ok {
		return t
	}
	return c.ForSection(sectionID)
}

// Label 返回分节标题文案。
func (c Computed) Label(sectionID string) string {
	return c.Labels[sectionID]
}

// Capabilities 描述渲染环境可用的字体族；Families 为空表示不做限制。
type Capabilities struct {
	Families []string
}

func (c *Capabilities) has(family string) bool {
	if c == nil || len(c.Families) == 0 {
		return true
	}
	for _, f := range c.Families {
		if strings.EqualFold(f, family) {
			return true
		}
	}
	return false
}

// Resolver 持有字体组合表。
type Resolver struct {
	pairings map[string]Pairing
	logger   diag.Logger
}

// Option 配置 Resolver。
type Option func(*Resolver)

// WithPairings 替换字体组合表；表中必须包含 DefaultPairing。
func WithPairings(p map[string]Pairing) Option {
	return func(r *Resolver) { r.pairings = p }
}

// WithLogger 设置回退告警的输出通道。
func WithLogger(l diag.Logger) Option {
	return func(r *Resolver) { r.logger = diag.OrNop(l) }
}

// NewResolver 使用内置字体组合表创建 Resolver。
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{pairings: DefaultPairings(), logger: diag.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 使用内置表合并设计规格。
func Resolve(spec Spec, caps *Capabilities) Computed {
	return NewResolver().Resolve(spec, caps)
}

// Resolve 按 默认值 → Base → Sections → Elements 的顺序合并。
func (r *Resolver) Resolve(spec Spec, caps *Capabilities) Computed {
	var fallbacks []string
	note := func(msg string, fields ...diag.Field) {
		r.logger.Warn(msg, fields...)
		fallbacks = append(fallbacks, msg+": "+fieldsString(fields))
	}

	base := r.apply(defaultTokens(), spec.Base, caps, note)

	out := Computed{
		Tokens:     base,
		Layout:     resolveLayout(spec.Layout),
		Locale:     Locale{PaperFormat: strings.ToUpper(spec.Locale.PaperFormat), Region: strings.ToUpper(spec.Locale.Region)},
		Labels:     DefaultLabels(),
		NameFormat: spec.NameFormat,
	}
	for k, v := range spec.Labels {
		out.Labels[k] = v
	}

	if len(spec.Sections) > 0 {
		out.Sections = make(map[string]Tokens, len(spec.Sections))
		for _, id := range sortedKeys(spec.Sections) {
			// 空覆盖层不落表，ForSection 直接退回基础令牌
			if spec.Sections[id].IsZero() {
				continue
			}
			out.Sections[id] = r.apply(base, spec.Sections[id], caps, note)
		}
	}
	if len(spec.Elements) > 0 {
		out.Elements = make(map[string]Tokens, len(spec.Elements))
		for _, key := range sortedKeys(spec.Elements) {
			section, element, ok := strings.Cut(key, ".")
			if !ok || section == "" || element == "" {
				note("元素覆盖键应为 section.element，已忽略", diag.String("key", key))
				continue
			}
			if spec.Elements[key].IsZero() {
				continue
			}
			out.Elements[key] = r.apply(out.ForSection(section), spec.Elements[key], caps, note)
		}
	}
	out.Fallbacks = fallbacks
	return out
}

func (r *Resolver) apply(t Tokens, o Override, caps *Capabilities, note func(string, ...diag.Field)) Tokens {
	if o.Accent != nil {
		t.Colors.Accent = *o.Accent
	}
	if o.Background != nil {
		t.Colors.Background = *o.Background
	}
	if o.Text != nil {
		t.Colors.Text = *o.Text
	}
	if o.Muted != nil {
		t.Colors.Muted = *o.Muted
	}
	if o.FontPairing != nil {
		t.Typography = r.pairing(t.Typography, *o.FontPairing, caps, note)
	}
	if o.BaseSize != nil && *o.BaseSize > 0 {
		t.Typography.BaseSize = *o.BaseSize
	}
	if o.HeadingLineHeight != nil && *o.HeadingLineHeight > 0 {
		t.Typography.LineHeights.Heading = *o.HeadingLineHeight
	}
	if o.BodyLineHeight != nil && *o.BodyLineHeight > 0 {
		t.Typography.LineHeights.Body = *o.BodyLineHeight
	}
	if o.SidebarLineHeight != nil && *o.SidebarLineHeight > 0 {
		t.Typography.LineHeights.Sidebar = *o.SidebarLineHeight
	}
	if o.BorderStyle != nil {
		t.Border.Style = normalizeBorder(*o.BorderStyle)
	}
	if o.BorderWidth != nil && *o.BorderWidth >= 0 {
		t.Border.Width = *o.BorderWidth
	}
	if o.BulletGlyph != nil {
		t.Bullet.Glyph = *o.BulletGlyph
	}
	if o.BulletIndent != nil && *o.BulletIndent >= 0 {
		t.Bullet.Indent = *o.BulletIndent
	}
	return t
}

func (r *Resolver) pairing(t Typography, id string, caps *Capabilities, note func(string, ...diag.Field)) Typography {
	key := strings.ToLower(strings.TrimSpace(id))
	p, ok := r.pairings[key]
	if !ok {
		note("未知字体组合，使用默认值", diag.String("pairing", id), diag.String("fallback", DefaultPairing))
		key, p = DefaultPairing, r.pairings[DefaultPairing]
	} else if !caps.has(p.Heading) || !caps.has(p.Body) {
		note("字体组合不可用，使用默认值", diag.String("pairing", id), diag.String("fallback", DefaultPairing))
		key, p = DefaultPairing, r.pairings[DefaultPairing]
	}
	t.Pairing = key
	t.HeadingFamily = p.Heading
	t.BodyFamily = p.Body
	return t
}

func resolveLayout(s LayoutSpec) Layout {
	l := Layout{
		Preset:      strings.ToUpper(strings.TrimSpace(s.Preset)),
		HeaderStyle: strings.ToLower(strings.TrimSpace(s.HeaderStyle)),
		SidebarSide: strings.ToLower(strings.TrimSpace(s.SidebarSide)),
		ShowPhoto:   true,
		PhotoScale:  s.PhotoScale,
	}
	if l.HeaderStyle != "band" {
		l.HeaderStyle = "plain"
	}
	if s.ShowPhoto != nil {
		l.ShowPhoto = *s.ShowPhoto
	}
	switch {
	case l.PhotoScale <= 0:
		l.PhotoScale = 1
	case l.PhotoScale < 0.5:
		l.PhotoScale = 0.5
	case l.PhotoScale > 1.5:
		l.PhotoScale = 1.5
	}
	if len(s.SectionOrder) > 0 {
		l.SectionOrder = make([]string, 0, len(s.SectionOrder))
		for _, id := range s.SectionOrder {
			if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
				l.SectionOrder = append(l.SectionOrder, id)
			}
		}
	}
	return l
}

func normalizeBorder(v string) string {
	switch v = strings.ToLower(strings.TrimSpace(v)); v {
	case "solid", "dashed":
		return v
	default:
		return "none"
	}
}

func sortedKeys(m map[string]Override) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fieldsString(fields []diag.Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if s, ok := f.Value().(string); ok {
			parts = append(parts, f.Key()+"="+s)
		}
	}
	return strings.Join(parts, " ")
}
