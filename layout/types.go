package layout

// 该文件定义布局树，供布局计算、分页、渲染与调试 JSON 共用。
// 所有坐标单位为 pt；Frame 相对父节点的内容区（padding 之内）。

import (
	"github.com/ByLCY/nexal/constraints"
	"github.com/ByLCY/nexal/design"
	"github.com/ByLCY/nexal/geom"
	"github.com/ByLCY/nexal/scene"
)

// Tree 保存分页前后的页面序列与元信息。
type Tree struct {
	Pages  []*Node    `json:"pages"`
	Bounds geom.Frame `json:"bounds"`
	Meta   Meta       `json:"meta"`
}

// Meta 记录分页与回退信息，供 CI 比对与调试使用，渲染器不依赖它。
type Meta struct {
	DidPaginate    bool     `json:"didPaginate"`
	SplitPoints    []int    `json:"splitPoints"`
	PageSignatures []string `json:"pageSignatures"`
	// Oversized 列出比整页还高、被单独放置的叶子。
	Oversized []string `json:"oversized,omitempty"`
	// Overflow 列出内容超出槽位高度的非 main 槽位。
	Overflow   []string `json:"overflow,omitempty"`
	Fallbacks  []string `json:"fallbacks,omitempty"`
	DocumentID string   `json:"documentId,omitempty"`
}

// Node 是布局树节点。
type Node struct {
	ID       string         `json:"id"`
	Type     scene.NodeType `json:"type"`
	Content  string         `json:"content,omitempty"`
	Frame    geom.Frame     `json:"frame"`
	Style    Style          `json:"style"`
	Children []*Node        `json:"children,omitempty"`

	Zone         constraints.FrameName `json:"zone,omitempty"`
	KeepWithNext bool                  `json:"keepWithNext,omitempty"`
	Direction    scene.Direction       `json:"direction,omitempty"`
	Align        scene.Align           `json:"align,omitempty"`
	// Gap/Padding 保留下来，分页时据此重新排布子节点。
	Gap     float64 `json:"gap,omitempty"`
	Padding float64 `json:"padding,omitempty"`
}

// Style 是节点解析后的样式快照。
type Style struct {
	Role          scene.Role    `json:"role,omitempty"`
	FontFamily    string        `json:"fontFamily,omitempty"`
	FontSize      float64       `json:"fontSize,omitempty"`
	LineHeight    float64       `json:"lineHeight,omitempty"` // 倍数
	Color         design.Color  `json:"color"`
	Weight        string        `json:"weight,omitempty"` // regular/bold
	Align         string        `json:"align,omitempty"`  // left/center/right
	TextTransform string        `json:"textTransform,omitempty"`
	LetterSpacing float64       `json:"letterSpacing,omitempty"`
	Background    *design.Color `json:"background,omitempty"`
	Bullet        string        `json:"bullet,omitempty"`
	Indent        float64       `json:"indent,omitempty"`
	Border        design.Border `json:"border"`
	BorderColor   design.Color  `json:"borderColor"`
}

// Font 返回测量用的字体描述。
func (s Style) Font() FontSpec {
	return FontSpec{Family: s.FontFamily, Size: s.FontSize, LineHeight: s.LineHeight, Weight: s.Weight}
}

// IsLeaf 报告节点是否为叶子。
func (n *Node) IsLeaf() bool { return n.Type.IsLeaf() }

// Clone 深拷贝节点及其子树。
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := n.Shell()
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Shell 复制节点本身，不含子节点。
func (n *Node) Shell() *Node {
	c := *n
	c.Children = nil
	if n.Style.Background != nil {
		bg := *n.Style.Background
		c.Style.Background = &bg
	}
	return &c
}

// Walk 以先序遍历访问节点，fn 返回 false 时跳过其子树。
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Find 在所有页面中按 id 查找第一个节点。
func (t *Tree) Find(id string) *Node {
	var found *Node
	for _, p := range t.Pages {
		Walk(p, func(n *Node) bool {
			if found != nil {
				return false
			}
			if n.ID == id {
				found = n
				return false
			}
			return true
		})
	}
	return found
}

// Leaves 按文档顺序返回某节点下的全部叶子。
func Leaves(n *Node) []*Node {
	var out []*Node
	Walk(n, func(x *Node) bool {
		if x.IsLeaf() {
			out = append(out, x)
		}
		return true
	})
	return out
}

// ZoneOf 返回页面上指定槽位的容器。
func ZoneOf(page *Node, zone constraints.FrameName) *Node {
	if page == nil {
		return nil
	}
	for _, c := range page.Children {
		if c.Zone == zone {
			return c
		}
	}
	return nil
}
