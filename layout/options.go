package layout

import "github.com/ByLCY/nexal/diag"

// FontSpec 描述一次测量所用的字体。LineHeight 为字号倍数。
type FontSpec struct {
	Family     string  `json:"family"`
	Size       float64 `json:"size"`
	LineHeight float64 `json:"lineHeight"`
	Weight     string  `json:"weight,omitempty"`
}

// Size 是测量结果（pt）。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Measurer 负责根据字体与宽度约束测量文本，必须是同步的纯函数。
type Measurer interface {
	Measure(text string, font FontSpec, maxWidth float64) Size
}

// Option 配置 Engine。
type Option func(*Engine)

// WithLogger 设置诊断日志。
func WithLogger(l diag.Logger) Option {
	return func(e *Engine) { e.logger = diag.OrNop(l) }
}
