// Package constraints 将 region、preset 与选项解析为页面几何约束。
// 所有查找表在构造 Resolver 时注入，解析过程是纯函数：未知 id 回退到默认值并记录告警，从不返回错误。
package constraints

import (
	"fmt"
	"strings"

	"github.com/ByLCY/nexal/diag"
	"github.com/ByLCY/nexal/geom"
)

// Constraints 是一次渲染请求的几何约束，构造后只读。
type Constraints struct {
	Region          RegionProfile            `json:"region"`
	Preset          string                   `json:"preset"`
	Paper           geom.Paper               `json:"paper"`
	Margins         geom.Margins             `json:"margins"`
	Frames          map[FrameName]geom.Frame `json:"frames"`
	SidebarPosition Side                     `json:"sidebarPosition"`
	SupportsPhoto   bool                     `json:"supportsPhoto"`
	Spacing         Spacing                  `json:"spacing"`
	Placement       map[Section]FrameName    `json:"placement"`
	Order           []Section                `json:"order"`
	Fallbacks       []string                 `json:"fallbacks,omitempty"`
}

// Frame 返回命名槽位。
func (c Constraints) Frame(name FrameName) (geom.Frame, bool) {
	f, ok := c.Frames[name]
	return f, ok
}

// Zone 返回分节所在槽位，未指定或槽位不存在时为 main。
func (c Constraints) Zone(s Section) FrameName {
	if z, ok := c.Placement[s]; ok {
		if _, exists := c.Frames[z]; exists {
			return z
		}
	}
	return FrameMain
}

// PrintableHeight 是续页可用高度：纸高减去上下边距。
func (c Constraints) PrintableHeight() float64 {
	return c.Paper.Height - c.Margins.Top - c.Margins.Bottom
}

// ContinuationFrame 是第 2 页起 main 的位置：横向不变，纵向占满可打印区。
func (c Constraints) ContinuationFrame() geom.Frame {
	main := c.Frames[FrameMain]
	return geom.Frame{X: main.X, Y: c.Margins.Top, Width: main.Width, Height: c.PrintableHeight()}
}

// Resolver 持有 region/preset 查找表。
type Resolver struct {
	regions map[string]RegionProfile
	presets map[string]Preset
	logger  diag.Logger
}

// Option 配置 Resolver。
type Option func(*Resolver)

// WithRegions 替换 region 表；表中必须包含 DefaultRegion。
func WithRegions(regions map[string]RegionProfile) Option {
	return func(r *Resolver) { r.regions = regions }
}

// WithPresets 替换 preset 表；表中必须包含 DefaultPreset。
func WithPresets(presets map[string]Preset) Option {
	return func(r *Resolver) { r.presets = presets }
}

// WithLogger 设置回退告警的输出通道。
func WithLogger(l diag.Logger) Option {
	return func(r *Resolver) { r.logger = diag.OrNop(l) }
}

// NewResolver 使用内置表创建 Resolver。
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		regions: DefaultRegions(),
		presets: DefaultPresets(),
		logger:  diag.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 使用内置表解析约束。
func Resolve(regionID, presetID string, opts Options) Constraints {
	return NewResolver().Resolve(regionID, presetID, opts)
}

// Resolve 将 region、preset 与选项组合成绝对页面几何。
func (r *Resolver) Resolve(regionID, presetID string, opts Options) Constraints {
	var fallbacks []string

	regionKey := strings.ToUpper(strings.TrimSpace(regionID))
	region, ok := r.regions[regionKey]
	if !ok {
		region = r.regions[DefaultRegion]
		fallbacks = append(fallbacks, fmt.Sprintf("region %q -> %s", regionID, DefaultRegion))
		r.logger.Warn("未知 region，使用默认值", diag.String("region", regionID), diag.String("fallback", DefaultRegion))
	}

	presetKey := strings.ToUpper(strings.TrimSpace(presetID))
	preset, ok := r.presets[presetKey]
	if !ok {
		preset = r.presets[DefaultPreset]
		fallbacks = append(fallbacks, fmt.Sprintf("preset %q -> %s", presetID, DefaultPreset))
		r.logger.Warn("未知 preset，使用默认值", diag.String("preset", presetID), diag.String("fallback", DefaultPreset))
	}

	o := opts.withDefaults()
	g := preset.Layout(region.Paper, region.Margins, o)

	order := preset.Order
	if len(order) == 0 {
		order = defaultOrder
	}
	placement := make(map[Section]FrameName, len(preset.Placement))
	for k, v := range preset.Placement {
		placement[k] = v
	}

	return Constraints{
		Region:          region,
		Preset:          preset.ID,
		Paper:           region.Paper,
		Margins:         region.Margins,
		Frames:          g.Frames,
		SidebarPosition: o.SidebarPosition,
		SupportsPhoto:   g.SupportsPhoto,
		Spacing:         spacingFor(region.Density),
		Placement:       placement,
		Order:           append([]Section(nil), order...),
		Fallbacks:       fallbacks,
	}
}
