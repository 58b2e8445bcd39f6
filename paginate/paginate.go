// Package paginate 把单页布局树切分为多页：按文档顺序放置 main 槽位的内容，
// 放不下时下降到容器内部，在新页上重建祖先容器链，并执行标题随后、文本拆分与超高叶子独占一页的规则。
package paginate

import (
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/nexal/constraints"
	"github.com/ByLCY/nexal/diag"
	"github.com/ByLCY/nexal/geom"
	"github.com/ByLCY/nexal/layout"
	"github.com/ByLCY/nexal/scene"
)

const (
	partSep = "@part"
	eps     = 1e-6
)

// Paginator 持有拆分文本时使用的测量器，须与布局阶段一致。
type Paginator struct {
	measurer layout.Measurer
	logger   diag.Logger
}

// Option 配置 Paginator。
type Option func(*Paginator)

// WithLogger 设置诊断日志。
func WithLogger(l diag.Logger) Option {
	return func(p *Paginator) { p.logger = diag.OrNop(l) }
}

// New 创建分页器。
func New(m layout.Measurer, opts ...Option) *Paginator {
	p := &Paginator{measurer: m, logger: diag.NopLogger{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// level 是当前页上一个打开的容器：src 为原始容器，out 为本页上的壳。
type level struct {
	src    *layout.Node
	out    *layout.Node
	top    float64 // out 顶部在 main 内容区中的绝对 y
	cursor float64 // 下一个子节点的相对 y（不含间距）
}

type carried struct {
	depth int
	node  *layout.Node
}

type state struct {
	p        *Paginator
	c        constraints.Constraints
	template *layout.Node // 原始 page 节点
	mainSrc  *layout.Node

	pages    []*layout.Node
	stack    []*level
	capacity float64
	fresh    bool // 本页尚未放置任何正文叶子（延续的标题不算）
	full     bool // 已放置超高叶子，下一次放置前必须换页

	oversized []string
}

// Paginate 返回新的多页布局树；输入树不会被修改。
func (p *Paginator) Paginate(tree *layout.Tree, c constraints.Constraints) *layout.Tree {
	out := &layout.Tree{Meta: copyMeta(tree)}
	if tree == nil || len(tree.Pages) == 0 {
		return out
	}
	first := tree.Pages[0]
	mainSrc := layout.ZoneOf(first, constraints.FrameMain)

	page1 := first.Shell()
	for _, z := range first.Children {
		if z == mainSrc {
			continue
		}
		page1.Children = append(page1.Children, z.Clone())
		if f, ok := c.Frame(z.Zone); ok && z.Frame.Height > f.Height+eps {
			out.Meta.Overflow = append(out.Meta.Overflow, z.ID)
			p.logger.Warn("槽位内容超出高度", diag.String("zone", z.ID), diag.Float("height", z.Frame.Height), diag.Float("limit", f.Height))
		}
	}
	if mainSrc == nil {
		out.Pages = []*layout.Node{page1}
		out.Bounds = bounds(out.Pages)
		out.Meta.PageSignatures = []string{Signature(page1)}
		return out
	}

	mainFrame, ok := c.Frame(constraints.FrameMain)
	if !ok {
		mainFrame = mainSrc.Frame
	}
	s := &state{p: p, c: c, template: first, mainSrc: mainSrc, fresh: true}
	main := mainSrc.Shell()
	main.Frame.Height = 0
	// 保持槽位在页面子节点中的原有顺序
	page1.Children = insertZone(first, page1.Children, mainSrc, main)
	s.pages = []*layout.Node{page1}
	// 第 1 页 main 可能被页眉下推，可用高度相应减少
	s.capacity = mainFrame.Bottom() - math.Max(mainFrame.Y, mainSrc.Frame.Y)
	s.stack = []*level{{src: mainSrc, out: main, cursor: mainSrc.Padding}}

	for _, ch := range mainSrc.Children {
		s.place(ch)
	}
	s.closePage(false)

	out.Pages = s.pages
	out.Bounds = bounds(out.Pages)
	out.Meta.Oversized = s.oversized
	out.Meta.DidPaginate = len(s.pages) > 1 || len(s.oversized) > 0
	out.Meta.SplitPoints = splitPoints(mainSrc, s.pages)
	out.Meta.PageSignatures = make([]string, len(s.pages))
	for i, pg := range s.pages {
		out.Meta.PageSignatures[i] = Signature(pg)
	}
	p.logger.Debug("分页完成", diag.Int("pages", len(s.pages)), diag.Int("oversized", len(s.oversized)))
	return out
}

func (s *state) top() *level { return s.stack[len(s.stack)-1] }

// slot 返回下一个子节点在当前层的相对 y，以及本页剩余高度。
func (s *state) slot() (float64, float64) {
	lv := s.top()
	y := lv.cursor
	if len(lv.out.Children) > 0 {
		y += lv.src.Gap
	}
	reserve := 0.0
	for _, l := range s.stack {
		reserve += l.src.Padding
	}
	return y, s.capacity - (lv.top + y) - reserve
}

func (s *state) place(ch *layout.Node) {
	if s.full {
		s.newPage()
	}
	for {
		y, remaining := s.slot()
		if ch.Frame.Height <= remaining+eps {
			s.attach(ch.Clone(), y)
			return
		}
		if len(ch.Children) > 0 && ch.Direction != scene.DirectionRow && !ch.IsLeaf() {
			s.descend(ch, y)
			return
		}
		if splittable(ch) {
			s.placeText(ch)
			return
		}
		if s.fresh && s.exceedsPage(ch.Frame.Height) {
			s.placeOversized(ch.Clone(), y)
			return
		}
		s.newPage()
	}
}

// exceedsPage 判断高度 h 在任何一页都放不下：续页按整页计；第 1 页 main 较矮时先换页再判断。
func (s *state) exceedsPage(h float64) bool {
	if len(s.pages) > 1 {
		return true
	}
	return h > s.c.ContinuationFrame().Height+eps
}

// descend 在当前页打开 ch 的壳，逐个放置其子节点。
func (s *state) descend(ch *layout.Node, y float64) {
	lv := s.top()
	shell := ch.Shell()
	shell.Frame.Y = y
	shell.Frame.Height = 0
	lv.out.Children = append(lv.out.Children, shell)
	s.stack = append(s.stack, &level{src: ch, out: shell, top: lv.top + y, cursor: ch.Padding})
	for _, gc := range ch.Children {
		s.place(gc)
	}
	s.pop()
}

func (s *state) pop() {
	lv := s.top()
	s.stack = s.stack[:len(s.stack)-1]
	finalize(lv.out)
	if len(s.stack) > 0 {
		parent := s.top()
		parent.cursor = lv.out.Frame.Y + lv.out.Frame.Height
	}
}

func (s *state) attach(n *layout.Node, y float64) {
	lv := s.top()
	n.Frame.Y = y
	lv.out.Children = append(lv.out.Children, n)
	lv.cursor = y + n.Frame.Height
	if !n.KeepWithNext {
		s.fresh = false
	}
}

func (s *state) placeOversized(n *layout.Node, y float64) {
	s.p.logger.Warn("节点高于整页，单独放置", diag.String("id", n.ID), diag.Float("height", n.Frame.Height))
	s.oversized = append(s.oversized, n.ID)
	s.attach(n, y)
	s.full = true
}

// placeText 放置可拆分的文本叶子；剩余空间不足时在词边界拆成 @partN 片段。
func (s *state) placeText(ch *layout.Node) {
	text := ch.Content
	part := 0
	fullPage := s.c.ContinuationFrame().Height
	for {
		y, remaining := s.slot()
		h := s.height(ch, text)
		if h <= remaining+eps {
			s.attach(s.fragment(ch, text, h, part), y)
			return
		}
		if h <= fullPage+eps {
			if head, tail := s.split(ch, text, remaining); head != "" {
				s.attach(s.fragment(ch, head, s.height(ch, head), part), y)
				part++
				text = tail
				s.newPage()
				continue
			}
		}
		if s.fresh && s.exceedsPage(h) {
			s.placeOversized(s.fragment(ch, text, h, part), y)
			return
		}
		s.newPage()
	}
}

func (s *state) fragment(ch *layout.Node, text string, h float64, part int) *layout.Node {
	n := ch.Shell()
	n.Content = text
	n.Frame.Height = h
	if part > 0 || text != ch.Content {
		n.ID = ch.ID + partSep + strconv.Itoa(part)
	}
	return n
}

func (s *state) height(ch *layout.Node, text string) float64 {
	if text == ch.Content {
		return ch.Frame.Height
	}
	return layout.TextHeight(s.p.measurer, text, ch.Style, ch.Frame.Width)
}

// split 二分查找能放进 remaining 的最长词边界前缀。前缀保留尾部空白，前缀与剩余部分拼接即原文。
func (s *state) split(ch *layout.Node, text string, remaining float64) (string, string) {
	if remaining <= 0 || s.p.measurer == nil {
		return "", ""
	}
	cuts := wordCuts(text)
	lo, hi, best := 0, len(cuts)-1, -1
	for lo <= hi {
		mid := (lo + hi) / 2
		if s.height(ch, text[:cuts[mid]]) <= remaining+eps {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best < 0 {
		return "", ""
	}
	return text[:cuts[best]], text[cuts[best]:]
}

// wordCuts 返回每个空白段之后的字节偏移，不含文本末尾。
func wordCuts(text string) []int {
	var cuts []int
	inSpace := false
	for i, r := range text {
		space := r == ' ' || r == '\t' || r == '\n'
		if inSpace && !space && i > 0 {
			cuts = append(cuts, i)
		}
		inSpace = space
	}
	return cuts
}

// newPage 收尾当前页（修剪空壳、把末尾标题移到下一页），并在新页上重建祖先容器链。
func (s *state) newPage() {
	moved := s.closePage(true)

	page := s.template.Shell()
	cont := s.c.ContinuationFrame()
	var prev *level
	stack := make([]*level, len(s.stack))
	for i, old := range s.stack {
		shell := old.src.Shell()
		lv := &level{src: old.src, out: shell, cursor: old.src.Padding}
		if i == 0 {
			shell.Frame = geom.Frame{X: cont.X, Y: cont.Y, Width: cont.Width}
			page.Children = append(page.Children, shell)
		} else {
			y := prev.cursor
			if len(prev.out.Children) > 0 {
				y += prev.src.Gap
			}
			shell.Frame.Y = y
			shell.Frame.Height = 0
			prev.out.Children = append(prev.out.Children, shell)
			lv.top = prev.top + y
			prev.cursor = y
		}
		// 延续的标题先于更深的壳放入
		for _, m := range moved {
			if m.depth != i {
				continue
			}
			y := lv.cursor
			if len(lv.out.Children) > 0 {
				y += lv.src.Gap
			}
			m.node.Frame.Y = y
			lv.out.Children = append(lv.out.Children, m.node)
			lv.cursor = y + m.node.Frame.Height
		}
		stack[i] = lv
		prev = lv
	}
	s.stack = stack
	s.pages = append(s.pages, page)
	s.capacity = cont.Height
	s.fresh = true
	s.full = false
}

// closePage 修剪当前页并回写容器高度；carry 为真时返回需要移到下一页的末尾标题。
func (s *state) closePage(carry bool) []carried {
	main := s.stack[0].out
	prune(main)
	var moved []carried
	for carry {
		parent, idx := lastLeaf(main)
		if parent == nil {
			break
		}
		leaf := parent.Children[idx]
		if !leaf.KeepWithNext || len(layout.Leaves(main)) <= 1 {
			break
		}
		depth := -1
		for i, lv := range s.stack {
			if lv.out == parent {
				depth = i
			}
		}
		if depth < 0 {
			break
		}
		parent.Children = parent.Children[:idx]
		moved = append([]carried{{depth: depth, node: leaf}}, moved...)
		prune(main)
	}
	finalize(main)
	return moved
}

// prune 去掉没有任何子节点的容器壳，返回 n 是否应保留。
func prune(n *layout.Node) bool {
	if n.IsLeaf() {
		return true
	}
	kept := make([]*layout.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if prune(c) {
			kept = append(kept, c)
		}
	}
	n.Children = kept
	return len(kept) > 0
}

// finalize 自底向上按子节点回写容器高度。
func finalize(n *layout.Node) {
	if n.IsLeaf() {
		return
	}
	bottom := 0.0
	for _, c := range n.Children {
		finalize(c)
		bottom = math.Max(bottom, c.Frame.Bottom())
	}
	if n.Direction == scene.DirectionRow {
		n.Frame.Height = bottom
		return
	}
	if len(n.Children) == 0 {
		n.Frame.Height = 0
		return
	}
	n.Frame.Height = bottom + n.Padding
}

func lastLeaf(n *layout.Node) (*layout.Node, int) {
	if len(n.Children) == 0 {
		return nil, -1
	}
	idx := len(n.Children) - 1
	last := n.Children[idx]
	if last.IsLeaf() {
		return n, idx
	}
	return lastLeaf(last)
}

func splittable(n *layout.Node) bool {
	return (n.Type == scene.TypeText || n.Type == scene.TypeListItem) && strings.TrimSpace(n.Content) != ""
}

func insertZone(page *layout.Node, zones []*layout.Node, src, replacement *layout.Node) []*layout.Node {
	out := make([]*layout.Node, 0, len(zones)+1)
	i := 0
	for _, z := range page.Children {
		if z == src {
			out = append(out, replacement)
			continue
		}
		if i < len(zones) {
			out = append(out, zones[i])
			i++
		}
	}
	return out
}

func bounds(pages []*layout.Node) geom.Frame {
	var b geom.Frame
	for _, p := range pages {
		for _, z := range p.Children {
			b = b.Union(z.Frame)
		}
	}
	return b
}

func copyMeta(tree *layout.Tree) layout.Meta {
	if tree == nil {
		return layout.Meta{}
	}
	return layout.Meta{
		Fallbacks:  append([]string(nil), tree.Meta.Fallbacks...),
		DocumentID: tree.Meta.DocumentID,
	}
}

// splitPoints 是每个续页上第一个叶子在原始 main 叶子序列中的下标。
func splitPoints(mainSrc *layout.Node, pages []*layout.Node) []int {
	index := map[string]int{}
	for i, leaf := range layout.Leaves(mainSrc) {
		index[leaf.ID] = i
	}
	points := []int{}
	for _, pg := range pages[1:] {
		main := layout.ZoneOf(pg, constraints.FrameMain)
		leaves := layout.Leaves(main)
		if len(leaves) == 0 {
			continue
		}
		if i, ok := index[BaseID(leaves[0].ID)]; ok {
			points = append(points, i)
		}
	}
	return points
}
