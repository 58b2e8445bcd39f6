// Package scene 把内容模型转换为语义节点树（document → page → zone → section → item → leaf）。
// 节点 id 是点分路径，在文档内唯一，只用于诊断与测试，下游一律按 Type 分派。
package scene

import "github.com/ByLCY/nexal/constraints"

// NodeType 是封闭的节点类型集合。
type NodeType string

const (
	TypeDocument  NodeType = "document"
	TypePage      NodeType = "page"
	TypeContainer NodeType = "container"
	TypeSection   NodeType = "section"
	TypeList      NodeType = "list"
	TypeListItem  NodeType = "listItem"
	TypeText      NodeType = "text"
	TypeImage     NodeType = "image"
	TypeSpacer    NodeType = "spacer"
)

// IsLeaf 报告该类型是否为叶子节点。
func (t NodeType) IsLeaf() bool {
	switch t {
	case TypeText, TypeListItem, TypeImage, TypeSpacer:
		return true
	default:
		return false
	}
}

// Direction 是容器的主轴方向。
type Direction string

const (
	DirectionColumn Direction = "column"
	DirectionRow    Direction = "row"
)

// Align 是行容器的水平分布方式。
type Align string

const (
	AlignStart        Align = "start"
	AlignCenter       Align = "center"
	AlignSpaceBetween Align = "space-between"
	AlignEnd          Align = "end"
)

// Role 决定叶子节点使用哪一组排版令牌。
type Role string

const (
	RoleName     Role = "name"
	RoleHeadline Role = "headline"
	RoleContact  Role = "contact"
	RoleHeading  Role = "heading"
	RoleTitle    Role = "title"
	RoleSubtitle Role = "subtitle"
	RoleMeta     Role = "meta"
	RoleBody     Role = "body"
	RoleBullet   Role = "bullet"
	RolePhoto    Role = "photo"
)

// StyleRef 指向 design.Computed 中的令牌：Section/Element 选覆盖层，Role 选字号与字重。
type StyleRef struct {
	Section string `json:"section,omitempty"`
	Element string `json:"element,omitempty"`
	Role    Role   `json:"role,omitempty"`
}

// Node 是语义树节点。
type Node struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Content  string   `json:"content,omitempty"`
	Children []*Node  `json:"children,omitempty"`
	Style    StyleRef `json:"style"`

	Direction Direction `json:"direction,omitempty"`
	Align     Align     `json:"align,omitempty"`
	// Zone 只在槽位容器上设置。
	Zone         constraints.FrameName `json:"zone,omitempty"`
	KeepWithNext bool                  `json:"keepWithNext,omitempty"`
	// Width/Height 是图片与占位符的固有尺寸（pt）。
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Tree 是一次渲染的语义树。
type Tree struct {
	Root *Node `json:"root"`
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

// Find 按 id 查找节点。
func (t *Tree) Find(id string) *Node {
	var found *Node
	Walk(t.Root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Leaves 按文档顺序返回全部叶子节点。
func (t *Tree) Leaves() []*Node {
	var out []*Node
	Walk(t.Root, func(n *Node) bool {
		if n.Type.IsLeaf() {
			out = append(out, n)
		}
		return true
	})
	return out
}
