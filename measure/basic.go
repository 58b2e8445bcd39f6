package measure

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/ByLCY/nexal/layout"
)

const (
	defaultSize       = 10.0
	defaultLineHeight = 1.2
	boldFactor        = 1.05
)

// Basic 使用 basicfont.Face7x13 的等宽度量按字号缩放。结果与平台和字体文件无关，适合测试与 CI 签名比对。
type Basic struct {
	face   font.Face
	height float64 // 字形的名义像素高度，对应 1em
}

var _ layout.Measurer = (*Basic)(nil)

// NewBasic 创建点阵字体测量器。
func NewBasic() *Basic {
	return &Basic{
		face:   basicfont.Face7x13,
		height: float64(basicfont.Face7x13.Height),
	}
}

// Measure 实现 layout.Measurer。
func (b *Basic) Measure(text string, f layout.FontSpec, maxWidth float64) layout.Size {
	size := f.Size
	if size <= 0 {
		size = defaultSize
	}
	lh := f.LineHeight
	if lh <= 0 {
		lh = defaultLineHeight
	}
	bold := strings.EqualFold(f.Weight, "bold")
	lines := Wrap(text, maxWidth, func(s string) float64 { return b.width(s, size, bold) })
	return layout.Size{
		Width:  Widest(lines),
		Height: float64(len(lines)) * size * lh,
	}
}

func (b *Basic) width(s string, size float64, bold bool) float64 {
	px := font.MeasureString(b.face, s)
	w := float64(px) / 64 / b.height * size
	if bold {
		w *= boldFactor
	}
	return w
}
