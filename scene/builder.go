package scene

import (
	"fmt"
	"strings"

	"github.com/ByLCY/nexal/binding"
	"github.com/ByLCY/nexal/constraints"
	"github.com/ByLCY/nexal/content"
	"github.com/ByLCY/nexal/design"
	"github.com/ByLCY/nexal/richtext"
)

// 页面上槽位容器的固定顺序。
var zoneOrder = []constraints.FrameName{
	constraints.FrameHeader,
	constraints.FrameHeaderLeft,
	constraints.FrameHeaderRight,
	constraints.FrameLeftRail,
	constraints.FrameSidebar,
	constraints.FrameMain,
	constraints.FrameRightRail,
}

const basePhotoSize = 84.0

// defaultName 用于设计与地区都未给出姓名格式的情况。
var defaultName = binding.MustCompile("${firstName} ${lastName}")

// Build 按分节顺序生成语义树。内容缺失的分节直接省略，从不返回错误。
func Build(model *content.Model, cd design.Computed, c constraints.Constraints) *Tree {
	if model == nil {
		model = &content.Model{}
	}
	b := &builder{model: model, cd: cd, c: c, zones: map[constraints.FrameName]*Node{}}

	page := &Node{ID: "page", Type: TypePage, Direction: DirectionColumn}
	for _, z := range zoneOrder {
		if _, ok := c.Frames[z]; !ok {
			continue
		}
		b.zones[z] = &Node{ID: string(z), Type: TypeContainer, Zone: z, Direction: DirectionColumn}
	}

	for _, sec := range b.order() {
		zone := c.Zone(sec)
		if n := b.section(sec, zone); n != nil {
			b.zones[zone].Children = append(b.zones[zone].Children, n)
		}
	}

	for _, z := range zoneOrder {
		zn, ok := b.zones[z]
		if !ok || (z != constraints.FrameMain && len(zn.Children) == 0) {
			continue
		}
		page.Children = append(page.Children, zn)
	}
	root := &Node{ID: "document", Type: TypeDocument, Direction: DirectionColumn, Children: []*Node{page}}
	return &Tree{Root: root}
}

type builder struct {
	model *content.Model
	cd    design.Computed
	c     constraints.Constraints
	zones map[constraints.FrameName]*Node
}

// order 优先使用设计指定的顺序，其余分节按 preset 顺序追加在后。
func (b *builder) order() []constraints.Section {
	known := map[constraints.Section]bool{}
	for _, s := range b.c.Order {
		known[s] = true
	}
	seen := map[constraints.Section]bool{}
	var out []constraints.Section
	add := func(s constraints.Section) {
		if !known[s] || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, id := range b.cd.Layout.SectionOrder {
		add(constraints.Section(id))
	}
	for _, s := range b.c.Order {
		add(s)
	}
	// 独立的联系方式分节紧跟 identity
	if _, ok := b.c.Placement[constraints.SectionContact]; ok {
		for i, s := range out {
			if s == constraints.SectionIdentity {
				out = append(out[:i+1], append([]constraints.Section{constraints.SectionContact}, out[i+1:]...)...)
				break
			}
		}
	}
	return out
}

func (b *builder) section(sec constraints.Section, zone constraints.FrameName) *Node {
	id := string(zone) + "." + string(sec)
	var children []*Node
	switch sec {
	case constraints.SectionIdentity:
		children = b.identity(id)
	case constraints.SectionContact:
		children = b.contact(id)
	case constraints.SectionSummary:
		if s := richtext.Plain(b.model.Summary); s != "" {
			children = []*Node{b.text(id+".text", s, sec, "text", RoleBody)}
		}
	case constraints.SectionExperience:
		for i, e := range b.model.Experiences {
			if item := b.experience(fmt.Sprintf("%s.item-%d", id, i+1), e); item != nil {
				children = append(children, item)
			}
		}
	case constraints.SectionEducation:
		for i, e := range b.model.Education {
			if item := b.education(fmt.Sprintf("%s.item-%d", id, i+1), e); item != nil {
				children = append(children, item)
			}
		}
	case constraints.SectionSkills:
		for i, s := range b.model.Skills {
			if item := b.rated(fmt.Sprintf("%s.item-%d", id, i+1), sec, s.Name, s.Level); item != nil {
				children = append(children, item)
			}
		}
	case constraints.SectionLanguages:
		for i, l := range b.model.Languages {
			if item := b.rated(fmt.Sprintf("%s.item-%d", id, i+1), sec, l.Name, l.Level); item != nil {
				children = append(children, item)
			}
		}
	}
	if len(children) == 0 {
		return nil
	}

	n := &Node{
		ID:        id,
		Type:      TypeSection,
		Style:     StyleRef{Section: string(sec)},
		Direction: DirectionColumn,
	}
	if label := strings.TrimSpace(b.cd.Label(string(sec))); label != "" && !isHeaderZone(zone) {
		title := b.text(id+".title", label, sec, "title", RoleHeading)
		title.KeepWithNext = true
		n.Children = append(n.Children, title)
	}
	n.Children = append(n.Children, children...)
	return n
}

func (b *builder) identity(id string) []*Node {
	ident := b.model.Identity
	if ident == nil {
		return nil
	}
	sec := constraints.SectionIdentity
	var out []*Node
	_, splitContact := b.c.Placement[constraints.SectionContact]
	if !splitContact {
		if photo := b.photo(id, sec); photo != nil {
			out = append(out, photo)
		}
	}
	if name := b.name(ident); name != "" {
		out = append(out, b.text(id+".name", name, sec, "name", RoleName))
	}
	if h := richtext.Plain(ident.Headline); h != "" {
		out = append(out, b.text(id+".headline", h, sec, "headline", RoleHeadline))
	}
	if !splitContact {
		out = append(out, b.contactLines(id, sec)...)
	}
	return out
}

func (b *builder) contact(id string) []*Node {
	if b.model.Identity == nil {
		return nil
	}
	sec := constraints.SectionContact
	out := b.contactLines(id, sec)
	if photo := b.photo(id, sec); photo != nil {
		out = append(out, photo)
	}
	return out
}

func (b *builder) contactLines(id string, sec constraints.Section) []*Node {
	var out []*Node
	for i, line := range b.model.Identity.Contacts() {
		out = append(out, b.text(fmt.Sprintf("%s.contact-%d", id, i+1), line, sec, "contact", RoleContact))
	}
	return out
}

func (b *builder) name(ident *content.Identity) string {
	format := b.cd.NameFormat
	if format == "" {
		format = b.c.Region.NameFormat
	}
	var name string
	if format == "" {
		name, _ = defaultName.Execute(ident.Fields())
	} else {
		name, _ = binding.Expand(format, ident.Fields())
	}
	return richtext.Collapse(name)
}

// photo 仅在 preset 可容纳、地区惯例允许、设计开启且有图片地址时生成。
func (b *builder) photo(id string, sec constraints.Section) *Node {
	ident := b.model.Identity
	if ident == nil || strings.TrimSpace(ident.PhotoURL) == "" {
		return nil
	}
	if !b.c.SupportsPhoto || b.c.Region.Photo == constraints.PhotoDiscouraged || !b.cd.Layout.ShowPhoto {
		return nil
	}
	size := basePhotoSize * b.cd.Layout.PhotoScale
	return &Node{
		ID:      id + ".photo",
		Type:    TypeImage,
		Content: strings.TrimSpace(ident.PhotoURL),
		Style:   StyleRef{Section: string(sec), Element: "photo", Role: RolePhoto},
		Width:   size,
		Height:  size,
	}
}

func (b *builder) experience(id string, e content.Experience) *Node {
	sec := constraints.SectionExperience
	var titles []*Node
	if s := richtext.Plain(e.Role); s != "" {
		titles = append(titles, b.text(id+".role", s, sec, "role", RoleTitle))
	}
	if s := richtext.Plain(e.Company); s != "" {
		titles = append(titles, b.text(id+".company", s, sec, "company", RoleSubtitle))
	}
	if s := richtext.Plain(e.Location); s != "" {
		titles = append(titles, b.text(id+".location", s, sec, "location", RoleMeta))
	}

	var children []*Node
	if header := b.header(id, sec, titles, e.Dates()); header != nil {
		children = append(children, header)
	}
	var tasks []*Node
	for i, t := range e.Tasks {
		if s := richtext.Plain(t); s != "" {
			leaf := b.text(fmt.Sprintf("%s.task-%d", id, i+1), s, sec, "task", RoleBullet)
			leaf.Type = TypeListItem
			tasks = append(tasks, leaf)
		}
	}
	if len(tasks) > 0 {
		children = append(children, &Node{
			ID:        id + ".tasks",
			Type:      TypeList,
			Style:     StyleRef{Section: string(sec), Element: "tasks"},
			Direction: DirectionColumn,
			Children:  tasks,
		})
	}
	return b.item(id, sec, children)
}

func (b *builder) education(id string, e content.Education) *Node {
	sec := constraints.SectionEducation
	var titles []*Node
	if s := richtext.Plain(e.Degree); s != "" {
		titles = append(titles, b.text(id+".degree", s, sec, "degree", RoleTitle))
	}
	if s := richtext.Plain(e.School); s != "" {
		titles = append(titles, b.text(id+".school", s, sec, "school", RoleSubtitle))
	}
	var children []*Node
	if header := b.header(id, sec, titles, e.Dates()); header != nil {
		children = append(children, header)
	}
	if s := richtext.Plain(e.Details); s != "" {
		children = append(children, b.text(id+".details", s, sec, "details", RoleBody))
	}
	return b.item(id, sec, children)
}

// header 生成 space-between 行：左侧标题列，右侧右对齐的日期。
func (b *builder) header(id string, sec constraints.Section, titles []*Node, dates string) *Node {
	row := &Node{
		ID:        id + ".header",
		Type:      TypeContainer,
		Style:     StyleRef{Section: string(sec), Element: "header"},
		Direction: DirectionRow,
		Align:     AlignSpaceBetween,
	}
	if len(titles) > 0 {
		row.Children = append(row.Children, &Node{
			ID:        id + ".titles",
			Type:      TypeContainer,
			Style:     StyleRef{Section: string(sec), Element: "titles"},
			Direction: DirectionColumn,
			Children:  titles,
		})
	}
	if dates != "" {
		d := b.text(id+".dates", dates, sec, "dates", RoleMeta)
		d.Align = AlignEnd
		row.Children = append(row.Children, d)
	}
	if len(row.Children) == 0 {
		return nil
	}
	return row
}

func (b *builder) rated(id string, sec constraints.Section, name, level string) *Node {
	name, level = richtext.Plain(name), richtext.Plain(level)
	if name == "" {
		return nil
	}
	if level == "" {
		return b.text(id, name, sec, "name", RoleBody)
	}
	lv := b.text(id+".level", level, sec, "level", RoleMeta)
	lv.Align = AlignEnd
	return &Node{
		ID:        id,
		Type:      TypeContainer,
		Style:     StyleRef{Section: string(sec), Element: "item"},
		Direction: DirectionRow,
		Align:     AlignSpaceBetween,
		Children:  []*Node{b.text(id+".name", name, sec, "name", RoleBody), lv},
	}
}

func (b *builder) item(id string, sec constraints.Section, children []*Node) *Node {
	if len(children) == 0 {
		return nil
	}
	return &Node{
		ID:        id,
		Type:      TypeContainer,
		Style:     StyleRef{Section: string(sec), Element: "item"},
		Direction: DirectionColumn,
		Children:  children,
	}
}

func (b *builder) text(id, s string, sec constraints.Section, element string, role Role) *Node {
	return &Node{
		ID:      id,
		Type:    TypeText,
		Content: s,
		Style:   StyleRef{Section: string(sec), Element: element, Role: role},
	}
}

func isHeaderZone(z constraints.FrameName) bool {
	switch z {
	case constraints.FrameHeader, constraints.FrameHeaderLeft, constraints.FrameHeaderRight:
		return true
	default:
		return false
	}
}
