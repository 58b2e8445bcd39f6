package canvasrenderer

import (
	"strings"

	"github.com/ByLCY/nexal/geom"
	"github.com/ByLCY/nexal/layout"
	"github.com/ByLCY/nexal/scene"
)

type opKind int

const (
	opFill opKind = iota
	opRule
	opText
	opBullet
	opImage
)

// drawOp 是一次绘制动作，frame 为页面绝对坐标（pt）。
type drawOp struct {
	kind  opKind
	frame geom.Frame
	node  *layout.Node
}

// plan 先序遍历页面，累加父节点偏移，按节点类型生成绘制动作。背景先于子节点绘制。
func plan(page *layout.Node) []drawOp {
	var ops []drawOp
	var walk func(n *layout.Node, ox, oy float64)
	walk = func(n *layout.Node, ox, oy float64) {
		abs := n.Frame.Translate(ox, oy)
		if n.Style.Background != nil && n.Type != scene.TypePage {
			ops = append(ops, drawOp{kind: opFill, frame: abs, node: n})
		}
		switch n.Type {
		case scene.TypeText:
			if strings.TrimSpace(n.Content) != "" {
				ops = append(ops, drawOp{kind: opText, frame: abs, node: n})
			}
			if hasRule(n) {
				ops = append(ops, drawOp{kind: opRule, frame: abs, node: n})
			}
		case scene.TypeListItem:
			if n.Style.Bullet != "" {
				ops = append(ops, drawOp{kind: opBullet, frame: abs, node: n})
			}
			text := abs
			text.X += n.Style.Indent
			text.Width -= n.Style.Indent
			ops = append(ops, drawOp{kind: opText, frame: text, node: n})
		case scene.TypeImage:
			if n.Content != "" {
				ops = append(ops, drawOp{kind: opImage, frame: abs, node: n})
			}
		case scene.TypeSpacer:
		}
		for _, c := range n.Children {
			walk(c, abs.X, abs.Y)
		}
	}
	// 页面 frame 即纸张，原点为 0
	for _, c := range page.Children {
		walk(c, 0, 0)
	}
	return ops
}

func hasRule(n *layout.Node) bool {
	b := n.Style.Border
	return b.Width > 0 && b.Style != "" && b.Style != "none"
}

// documentTitle 取第一页上第一个姓名文本作为 PDF 标题。
func documentTitle(tree *layout.Tree) string {
	if tree == nil || len(tree.Pages) == 0 {
		return ""
	}
	for _, leaf := range layout.Leaves(tree.Pages[0]) {
		if leaf.Type == scene.TypeText && leaf.Style.Role == scene.RoleName {
			return leaf.Content
		}
	}
	return ""
}
