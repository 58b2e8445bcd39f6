// Package geom 定义排版引擎共用的几何类型，所有数值单位均为点（pt）。
package geom

import (
	"math"
	"strings"
)

// Frame 是轴对齐矩形，X/Y 为左上角。
type Frame struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (f Frame) Right() float64  { return f.X + f.Width }
func (f Frame) Bottom() float64 { return f.Y + f.Height }

// Translate 返回平移后的副本。
func (f Frame) Translate(dx, dy float64) Frame {
	f.X += dx
	f.Y += dy
	return f
}

// Intersects 判断两个矩形是否重叠超过 tol；仅接触边界不算重叠。
func (f Frame) Intersects(o Frame, tol float64) bool {
	w := math.Min(f.Right(), o.Right()) - math.Max(f.X, o.X)
	h := math.Min(f.Bottom(), o.Bottom()) - math.Max(f.Y, o.Y)
	return w > tol && h > tol
}

// Contains 判断 o 是否完全位于 f 内部（允许 1e-6 的浮点误差）。
func (f Frame) Contains(o Frame) bool {
	const eps = 1e-6
	return o.X >= f.X-eps && o.Y >= f.Y-eps && o.Right() <= f.Right()+eps && o.Bottom() <= f.Bottom()+eps
}

// Union 返回同时包含两者的最小矩形。零值矩形视为空。
func (f Frame) Union(o Frame) Frame {
	if f == (Frame{}) {
		return o
	}
	if o == (Frame{}) {
		return f
	}
	x := math.Min(f.X, o.X)
	y := math.Min(f.Y, o.Y)
	return Frame{
		X:      x,
		Y:      y,
		Width:  math.Max(f.Right(), o.Right()) - x,
		Height: math.Max(f.Bottom(), o.Bottom()) - y,
	}
}

// Margins 以 pt 为单位。
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Uniform 四边相同的边距。
func Uniform(v float64) Margins { return Margins{Top: v, Right: v, Bottom: v, Left: v} }

// Paper 描述纸张格式与尺寸（pt）。
type Paper struct {
	Format string  `json:"format"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Box 返回整页矩形。
func (p Paper) Box() Frame { return Frame{Width: p.Width, Height: p.Height} }

// ContentBox 返回扣除边距后的区域。
func (p Paper) ContentBox(m Margins) Frame {
	return Frame{
		X:      m.Left,
		Y:      m.Top,
		Width:  p.Width - m.Left - m.Right,
		Height: p.Height - m.Top - m.Bottom,
	}
}

var paperFormats = map[string]Paper{
	"A4":     {Format: "A4", Width: 595.28, Height: 841.89},
	"A5":     {Format: "A5", Width: 419.53, Height: 595.28},
	"LETTER": {Format: "LETTER", Width: 612, Height: 792},
	"LEGAL":  {Format: "LEGAL", Width: 612, Height: 1008},
}

// LookupPaper 按名称（不区分大小写）查找纸张。
func LookupPaper(format string) (Paper, bool) {
	p, ok := paperFormats[strings.ToUpper(strings.TrimSpace(format))]
	return p, ok
}
