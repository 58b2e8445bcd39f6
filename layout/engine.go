// Package layout 把语义树排成单页布局树：列/行盒模型 + 注入的文本测量。
package layout

import (
	"math"

	"github.com/ByLCY/nexal/constraints"
	"github.com/ByLCY/nexal/design"
	"github.com/ByLCY/nexal/diag"
	"github.com/ByLCY/nexal/geom"
	"github.com/ByLCY/nexal/richtext"
	"github.com/ByLCY/nexal/scene"
)

// Engine 计算布局。构造后只读，可并发使用（前提是 Measurer 可并发）。
type Engine struct {
	measurer Measurer
	design   design.Computed
	logger   diag.Logger
}

// NewEngine 创建布局引擎。
func NewEngine(m Measurer, cd design.Computed, opts ...Option) *Engine {
	e := &Engine{measurer: m, design: cd, logger: diag.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// pass 是一次 Compute 的上下文。
type pass struct {
	e       *Engine
	c       constraints.Constraints
	spacing constraints.Spacing
}

// Compute 生成单页（分页前）布局树。main 的高度可能超过页面，由分页器处理。
func (e *Engine) Compute(tree *scene.Tree, c constraints.Constraints) *Tree {
	out := &Tree{}
	out.Meta.Fallbacks = append(append([]string(nil), c.Fallbacks...), e.design.Fallbacks...)
	if tree == nil || tree.Root == nil {
		return out
	}
	p := &pass{e: e, c: c, spacing: c.Spacing}

	var pages []*scene.Node
	if tree.Root.Type == scene.TypePage {
		pages = []*scene.Node{tree.Root}
	} else {
		for _, ch := range tree.Root.Children {
			if ch.Type == scene.TypePage {
				pages = append(pages, ch)
			}
		}
	}
	for _, sp := range pages {
		page := p.page(sp)
		out.Pages = append(out.Pages, page)
		for _, z := range page.Children {
			out.Bounds = out.Bounds.Union(z.Frame)
		}
	}
	e.logger.Debug("布局完成", diag.Int("pages", len(out.Pages)))
	return out
}

func (p *pass) page(sp *scene.Node) *Node {
	page := &Node{
		ID:        sp.ID,
		Type:      scene.TypePage,
		Frame:     p.c.Paper.Box(),
		Direction: scene.DirectionColumn,
	}
	for _, sz := range sp.Children {
		if sz.Zone == "" {
			p.e.logger.Warn("页面子节点缺少槽位标记，已忽略", diag.String("id", sz.ID))
			continue
		}
		frame, ok := p.c.Frame(sz.Zone)
		if !ok {
			p.e.logger.Warn("槽位不存在，已忽略", diag.String("zone", string(sz.Zone)))
			continue
		}
		zone := p.zone(sz, frame)
		page.Children = append(page.Children, zone)
	}
	p.clearMain(page)
	return page
}

// clearMain 把 main 推到位于其上方且横向相交的槽位之下，页眉内容超出预设高度时也不会压住正文。
func (p *pass) clearMain(page *Node) {
	main := ZoneOf(page, constraints.FrameMain)
	if main == nil {
		return
	}
	top := main.Frame.Y
	for _, z := range page.Children {
		if z == main || z.Frame.Y >= main.Frame.Y {
			continue
		}
		if math.Min(z.Frame.Right(), main.Frame.Right())-math.Max(z.Frame.X, main.Frame.X) <= 0 {
			continue
		}
		top = math.Max(top, z.Frame.Bottom()+p.spacing.SectionGap)
	}
	if top > main.Frame.Y {
		p.e.logger.Debug("main 下移以避开上方槽位", diag.Float("from", main.Frame.Y), diag.Float("to", top))
		main.Frame.Y = top
	}
}

// zone 的 Frame 取自约束（页面坐标即页面内容区坐标），高度为内容高度。
func (p *pass) zone(sz *scene.Node, frame geom.Frame) *Node {
	z := &Node{
		ID:        sz.ID,
		Type:      sz.Type,
		Zone:      sz.Zone,
		Direction: scene.DirectionColumn,
		Gap:       p.spacing.SectionGap,
		Style:     p.zoneStyle(sz.Zone),
	}
	h := p.column(z, sz.Children, frame.Width, sz.Zone)
	z.Frame = geom.Frame{X: frame.X, Y: frame.Y, Width: frame.Width, Height: h}
	return z
}

func (p *pass) zoneStyle(zone constraints.FrameName) Style {
	var s Style
	if p.e.design.Layout.HeaderStyle == "band" {
		switch zone {
		case constraints.FrameHeader, constraints.FrameHeaderLeft, constraints.FrameHeaderRight:
			bg := p.e.design.Tokens.Colors.Accent
			s.Background = &bg
		}
	}
	return s
}

// node 布局单个节点，宽度由父容器给定；返回 nil 表示省略。X/Y 由父容器设置。
func (p *pass) node(sn *scene.Node, width float64, zone constraints.FrameName) *Node {
	n := &Node{
		ID:           sn.ID,
		Type:         sn.Type,
		Content:      sn.Content,
		KeepWithNext: sn.KeepWithNext,
		Direction:    sn.Direction,
		Align:        sn.Align,
	}
	switch sn.Type {
	case scene.TypeText, scene.TypeListItem:
		n.Style = p.e.style(sn, zone)
		n.Frame = geom.Frame{Width: width, Height: p.textHeight(sn.Content, n.Style, width)}
		return n
	case scene.TypeImage:
		n.Style = p.e.style(sn, zone)
		w, h := imageSize(sn, width)
		n.Frame = geom.Frame{Width: w, Height: h}
		return n
	case scene.TypeSpacer:
		n.Frame = geom.Frame{Width: width, Height: math.Max(sn.Height, 0)}
		return n
	case scene.TypeSection:
		n.Gap = p.spacing.ItemGap
		n.Padding = p.spacing.Padding
		n.Direction = scene.DirectionColumn
		h := p.column(n, sn.Children, width, zone)
		if !hasContent(n) {
			return nil
		}
		n.Frame = geom.Frame{Width: width, Height: h}
		return n
	}

	// container、list 以及未知类型都按容器处理
	n.Gap = p.spacing.LineGap
	if sn.Direction == scene.DirectionRow {
		n.Gap = p.spacing.ItemGap
		h := p.row(n, sn.Children, width, zone)
		n.Frame = geom.Frame{Width: width, Height: h}
		return n
	}
	n.Direction = scene.DirectionColumn
	h := p.column(n, sn.Children, width, zone)
	n.Frame = geom.Frame{Width: width, Height: h}
	return n
}

// column 纵向堆叠子节点，返回容器高度。
func (p *pass) column(n *Node, children []*scene.Node, width float64, zone constraints.FrameName) float64 {
	inner := math.Max(width-2*n.Padding, 0)
	y := n.Padding
	for _, sc := range children {
		child := p.node(sc, inner, zone)
		if child == nil {
			continue
		}
		if len(n.Children) > 0 {
			y += n.Gap
		}
		child.Frame.X = n.Padding
		child.Frame.Y = y
		y += child.Frame.Height
		n.Children = append(n.Children, child)
	}
	if len(n.Children) == 0 {
		return 0
	}
	return y + n.Padding
}

// row 横向排布子节点。space-between 下每个子节点只拿到固有宽度，最后一个不超过半行。
func (p *pass) row(n *Node, children []*scene.Node, width float64, zone constraints.FrameName) float64 {
	if len(children) < 2 {
		n.Align = scene.AlignStart
	}
	widths := make([]float64, len(children))
	total := 0.0
	for i, sc := range children {
		widths[i] = math.Min(p.intrinsicWidth(sc, width, zone), width)
		total += widths[i]
	}
	gaps := n.Gap * float64(len(children)-1)
	if len(children) > 1 && total+gaps > width {
		last := len(children) - 1
		widths[last] = math.Min(widths[last], width/2)
		rest := math.Max(width-widths[last]-gaps, 0)
		sum := 0.0
		for _, w := range widths[:last] {
			sum += w
		}
		if sum > rest && sum > 0 {
			for i := range widths[:last] {
				widths[i] = widths[i] * rest / sum
			}
		}
		total = 0
		for _, w := range widths {
			total += w
		}
	}

	xs := make([]float64, len(children))
	switch n.Align {
	case scene.AlignSpaceBetween:
		free := math.Max(width-total, 0)
		step := 0.0
		if len(children) > 1 {
			step = free / float64(len(children)-1)
		}
		x := 0.0
		for i := range children {
			xs[i] = x
			x += widths[i] + step
		}
	case scene.AlignCenter, scene.AlignEnd:
		start := math.Max(width-total-gaps, 0)
		if n.Align == scene.AlignCenter {
			start /= 2
		}
		x := start
		for i := range children {
			xs[i] = x
			x += widths[i] + n.Gap
		}
	default:
		x := 0.0
		for i := range children {
			xs[i] = x
			x += widths[i] + n.Gap
		}
	}

	h := 0.0
	for i, sc := range children {
		child := p.node(sc, widths[i], zone)
		if child == nil {
			continue
		}
		child.Frame.X = xs[i]
		child.Frame.Y = 0
		h = math.Max(h, child.Frame.Height)
		n.Children = append(n.Children, child)
	}
	return h
}

// intrinsicWidth 是节点在 maxWidth 约束下的自然宽度。
func (p *pass) intrinsicWidth(sn *scene.Node, maxWidth float64, zone constraints.FrameName) float64 {
	switch sn.Type {
	case scene.TypeText, scene.TypeListItem:
		st := p.e.style(sn, zone)
		sz := p.e.measure(sn.Content, st, maxWidth-st.Indent)
		return math.Min(math.Ceil(sz.Width)+st.Indent, maxWidth)
	case scene.TypeImage:
		w, _ := imageSize(sn, maxWidth)
		return w
	case scene.TypeSpacer:
		return 0
	}
	w := 0.0
	if sn.Direction == scene.DirectionRow {
		for i, c := range sn.Children {
			if i > 0 {
				w += p.spacing.ItemGap
			}
			w += p.intrinsicWidth(c, maxWidth, zone)
		}
	} else {
		for _, c := range sn.Children {
			w = math.Max(w, p.intrinsicWidth(c, maxWidth, zone))
		}
	}
	return math.Min(w, maxWidth)
}

func (p *pass) textHeight(content string, st Style, width float64) float64 {
	return TextHeight(p.e.measurer, content, st, width)
}

func (e *Engine) measure(content string, st Style, maxWidth float64) Size {
	return MeasureText(e.measurer, content, st, maxWidth)
}

// MeasureText 对测量文本应用 text-transform，内容本身保持原样。
func MeasureText(m Measurer, content string, st Style, maxWidth float64) Size {
	if m == nil {
		return Size{}
	}
	return m.Measure(richtext.Transform(content, st.TextTransform), st.Font(), math.Max(maxWidth, 0))
}

// TextHeight 是文本叶子在给定框宽下的高度：扣除项目符号缩进后测量，向上取整。
func TextHeight(m Measurer, content string, st Style, width float64) float64 {
	return math.Ceil(MeasureText(m, content, st, width-st.Indent).Height)
}

func imageSize(sn *scene.Node, maxWidth float64) (float64, float64) {
	w, h := sn.Width, sn.Height
	if w <= 0 {
		w = maxWidth
	}
	if h <= 0 {
		h = w
	}
	if w > maxWidth && w > 0 {
		h = h * maxWidth / w
		w = maxWidth
	}
	return w, h
}

// hasContent 报告分节除标题外是否还有子节点。
func hasContent(section *Node) bool {
	for _, c := range section.Children {
		if !c.KeepWithNext {
			return true
		}
	}
	return false
}
