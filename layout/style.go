package layout

import (
	"github.com/ByLCY/nexal/constraints"
	"github.com/ByLCY/nexal/design"
	"github.com/ByLCY/nexal/scene"
)

// 各角色相对基础字号的倍数。
var roleScale = map[scene.Role]float64{
	scene.RoleName:     2.2,
	scene.RoleHeadline: 1.2,
	scene.RoleHeading:  1.2,
	scene.RoleTitle:    1.05,
	scene.RoleSubtitle: 1,
	scene.RoleMeta:     0.9,
	scene.RoleContact:  0.9,
	scene.RoleBody:     1,
	scene.RoleBullet:   1,
}

// style 把节点的样式引用解析为快照。标题类角色用标题行高，其余按槽位选正文或侧栏行高。
func (e *Engine) style(sn *scene.Node, zone constraints.FrameName) Style {
	ref := sn.Style
	var t design.Tokens
	if ref.Element != "" {
		t = e.design.ForElement(ref.Section, ref.Element)
	} else {
		t = e.design.ForSection(ref.Section)
	}
	typo := t.Typography

	scale, ok := roleScale[ref.Role]
	if !ok {
		scale = 1
	}
	s := Style{
		Role:        ref.Role,
		FontFamily:  typo.BodyFamily,
		FontSize:    typo.BaseSize * scale,
		LineHeight:  typo.LineHeights.Body,
		Color:       t.Colors.Text,
		Weight:      "regular",
		Align:       "left",
		Border:      design.Border{Style: "none"},
		BorderColor: t.Colors.Accent,
	}
	if zone != constraints.FrameMain {
		s.LineHeight = typo.LineHeights.Sidebar
	}

	switch ref.Role {
	case scene.RoleName:
		s.FontFamily = typo.HeadingFamily
		s.LineHeight = typo.LineHeights.Heading
		s.Weight = "bold"
	case scene.RoleHeadline:
		s.FontFamily = typo.HeadingFamily
		s.LineHeight = typo.LineHeights.Heading
		s.Color = t.Colors.Accent
	case scene.RoleHeading:
		s.FontFamily = typo.HeadingFamily
		s.LineHeight = typo.LineHeights.Heading
		s.Weight = "bold"
		s.Color = t.Colors.Accent
		s.TextTransform = "uppercase"
		s.LetterSpacing = 0.5
		s.Border = t.Border
	case scene.RoleTitle:
		s.Weight = "bold"
	case scene.RoleMeta, scene.RoleContact:
		s.Color = t.Colors.Muted
	case scene.RoleBullet:
		s.Bullet = t.Bullet.Glyph
		s.Indent = t.Bullet.Indent
	}
	switch sn.Align {
	case scene.AlignEnd:
		s.Align = "right"
	case scene.AlignCenter:
		s.Align = "center"
	}
	return s
}
