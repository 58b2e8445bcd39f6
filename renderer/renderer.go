package renderer

import "github.com/ByLCY/nexal/layout"

// Renderer 将分页后的布局树输出为最终文件，例如 PDF 或图像。
// 渲染器只读布局树：按节点类型分派，逐层累加父节点偏移得到绝对坐标，不重新排版。
type Renderer interface {
	Render(tree *layout.Tree) ([]byte, error)
}
