package constraints

import (
	"math"

	"github.com/ByLCY/nexal/geom"
)

// FrameName 是页面上命名的槽位。
type FrameName string

const (
	FrameMain        FrameName = "main"
	FrameSidebar     FrameName = "sidebar"
	FrameHeader      FrameName = "header"
	FrameHeaderLeft  FrameName = "headerLeft"
	FrameHeaderRight FrameName = "headerRight"
	FrameLeftRail    FrameName = "leftRail"
	FrameRightRail   FrameName = "rightRail"
)

// Section 是简历内容的语义分节。
type Section string

const (
	SectionIdentity   Section = "identity"
	SectionContact    Section = "contact"
	SectionSummary    Section = "summary"
	SectionExperience Section = "experience"
	SectionEducation  Section = "education"
	SectionSkills     Section = "skills"
	SectionLanguages  Section = "languages"
)

// defaultOrder 是未被 preset 覆盖时的分节顺序。
var defaultOrder = []Section{
	SectionIdentity, SectionSummary, SectionExperience,
	SectionEducation, SectionSkills, SectionLanguages,
}

// Preset ids.
const (
	PresetSidebar      = "SIDEBAR"
	PresetTopHeader    = "TOP_HEADER"
	PresetSplitHeader  = "SPLIT_HEADER"
	PresetLeftRail     = "LEFT_RAIL"
	PresetDualSidebar  = "DUAL_SIDEBAR"
	PresetATSOneColumn = "ATS_ONE_COLUMN"

	DefaultPreset = PresetSidebar
)

// Side 表示侧栏位于主栏左侧还是右侧。
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// minPhotoWidth 是能容纳照片的最窄槽位宽度。
const minPhotoWidth = 100.0

// Options 是 preset 相关参数，零值字段使用默认值。
type Options struct {
	SidebarWidth    float64 `json:"sidebarWidth,omitempty" yaml:"sidebar_width"`
	SidebarPosition Side    `json:"sidebarPosition,omitempty" yaml:"sidebar_position"`
	Gap             float64 `json:"gap,omitempty" yaml:"gap"`
	HeaderHeight    float64 `json:"headerHeight,omitempty" yaml:"header_height"`
	SplitRatio      float64 `json:"splitRatio,omitempty" yaml:"split_ratio"`
	RailWidth       float64 `json:"railWidth,omitempty" yaml:"rail_width"`
	LeftRailWidth   float64 `json:"leftRailWidth,omitempty" yaml:"left_rail_width"`
	RightRailWidth  float64 `json:"rightRailWidth,omitempty" yaml:"right_rail_width"`
}

func (o Options) withDefaults() Options {
	if o.SidebarWidth <= 0 {
		o.SidebarWidth = 180
	}
	if o.SidebarPosition != SideRight {
		o.SidebarPosition = SideLeft
	}
	if o.Gap <= 0 {
		o.Gap = 18
	}
	if o.HeaderHeight <= 0 {
		o.HeaderHeight = 110
	}
	if o.SplitRatio <= 0 {
		o.SplitRatio = 0.5
	}
	if o.RailWidth <= 0 {
		o.RailWidth = 96
	}
	if o.LeftRailWidth <= 0 {
		o.LeftRailWidth = 130
	}
	if o.RightRailWidth <= 0 {
		o.RightRailWidth = 130
	}
	o.SplitRatio = clamp(o.SplitRatio, 0.2, 0.8)
	return o
}

// Geometry 是 preset 函数的输出。
type Geometry struct {
	Frames        map[FrameName]geom.Frame
	SupportsPhoto bool
}

// Preset 是一种命名的栏位结构。
type Preset struct {
	ID     string
	Layout func(paper geom.Paper, m geom.Margins, o Options) Geometry
	// Placement 指定分节所在槽位，未列出的分节进入 main。
	Placement map[Section]FrameName
	// Order 为空时使用默认分节顺序。
	Order []Section
}

// DefaultPresets 返回内置 preset 表的一份新拷贝。
func DefaultPresets() map[string]Preset {
	return map[string]Preset{
		PresetSidebar: {
			ID:     PresetSidebar,
			Layout: sidebarLayout,
			Placement: map[Section]FrameName{
				SectionIdentity:  FrameSidebar,
				SectionSkills:    FrameSidebar,
				SectionLanguages: FrameSidebar,
			},
		},
		PresetTopHeader: {
			ID:        PresetTopHeader,
			Layout:    topHeaderLayout,
			Placement: map[Section]FrameName{SectionIdentity: FrameHeader},
		},
		PresetSplitHeader: {
			ID:     PresetSplitHeader,
			Layout: splitHeaderLayout,
			Placement: map[Section]FrameName{
				SectionIdentity: FrameHeaderLeft,
				SectionContact:  FrameHeaderRight,
			},
		},
		PresetLeftRail: {
			ID:     PresetLeftRail,
			Layout: leftRailLayout,
			Placement: map[Section]FrameName{
				SectionSkills:    FrameLeftRail,
				SectionLanguages: FrameLeftRail,
			},
		},
		PresetDualSidebar: {
			ID:     PresetDualSidebar,
			Layout: dualSidebarLayout,
			Placement: map[Section]FrameName{
				SectionIdentity:  FrameLeftRail,
				SectionSkills:    FrameLeftRail,
				SectionLanguages: FrameRightRail,
			},
		},
		PresetATSOneColumn: {
			ID:     PresetATSOneColumn,
			Layout: atsLayout,
			// ATS 解析器优先扫描技能关键词。
			Order: []Section{
				SectionIdentity, SectionSummary, SectionSkills,
				SectionExperience, SectionEducation, SectionLanguages,
			},
		},
	}
}

func sidebarLayout(p geom.Paper, m geom.Margins, o Options) Geometry {
	box := p.ContentBox(m)
	sw := clamp(o.SidebarWidth, 60, box.Width/2)
	mainW := box.Width - sw - o.Gap
	side := geom.Frame{X: box.X, Y: box.Y, Width: sw, Height: box.Height}
	main := geom.Frame{X: box.X + sw + o.Gap, Y: box.Y, Width: mainW, Height: box.Height}
	if o.SidebarPosition == SideRight {
		main.X = box.X
		side.X = box.X + mainW + o.Gap
	}
	return Geometry{
		Frames:        map[FrameName]geom.Frame{FrameMain: main, FrameSidebar: side},
		SupportsPhoto: sw >= minPhotoWidth,
	}
}

func topHeaderLayout(p geom.Paper, m geom.Margins, o Options) Geometry {
	box := p.ContentBox(m)
	hh := clamp(o.HeaderHeight, 40, box.Height/3)
	header := geom.Frame{X: box.X, Y: box.Y, Width: box.Width, Height: hh}
	main := geom.Frame{X: box.X, Y: box.Y + hh + o.Gap, Width: box.Width, Height: box.Height - hh - o.Gap}
	return Geometry{
		Frames:        map[FrameName]geom.Frame{FrameMain: main, FrameHeader: header},
		SupportsPhoto: box.Width >= minPhotoWidth,
	}
}

// splitHeaderLayout 的页眉是通栏色带：左右两块加中缝恰好等于纸宽。
func splitHeaderLayout(p geom.Paper, m geom.Margins, o Options) Geometry {
	box := p.ContentBox(m)
	hh := clamp(o.HeaderHeight, 40, p.Height/3)
	avail := p.Width - o.Gap
	lw := avail * o.SplitRatio
	rw := avail - lw
	left := geom.Frame{X: 0, Y: 0, Width: lw, Height: hh}
	right := geom.Frame{X: lw + o.Gap, Y: 0, Width: rw, Height: hh}
	top := math.Max(m.Top, hh+o.Gap)
	main := geom.Frame{X: box.X, Y: top, Width: box.Width, Height: p.Height - m.Bottom - top}
	return Geometry{
		Frames: map[FrameName]geom.Frame{
			FrameMain:        main,
			FrameHeaderLeft:  left,
			FrameHeaderRight: right,
		},
		SupportsPhoto: rw >= minPhotoWidth,
	}
}

func leftRailLayout(p geom.Paper, m geom.Margins, o Options) Geometry {
	box := p.ContentBox(m)
	rw := clamp(o.RailWidth, 48, box.Width/3)
	rail := geom.Frame{X: box.X, Y: box.Y, Width: rw, Height: box.Height}
	main := geom.Frame{X: box.X + rw + o.Gap, Y: box.Y, Width: box.Width - rw - o.Gap, Height: box.Height}
	return Geometry{
		Frames:        map[FrameName]geom.Frame{FrameMain: main, FrameLeftRail: rail},
		SupportsPhoto: rw >= minPhotoWidth,
	}
}

func dualSidebarLayout(p geom.Paper, m geom.Margins, o Options) Geometry {
	box := p.ContentBox(m)
	lw := clamp(o.LeftRailWidth, 48, box.Width/3)
	rw := clamp(o.RightRailWidth, 48, box.Width/3)
	left := geom.Frame{X: box.X, Y: box.Y, Width: lw, Height: box.Height}
	right := geom.Frame{X: box.Right() - rw, Y: box.Y, Width: rw, Height: box.Height}
	main := geom.Frame{X: left.Right() + o.Gap, Y: box.Y, Width: box.Width - lw - rw - 2*o.Gap, Height: box.Height}
	return Geometry{
		Frames: map[FrameName]geom.Frame{
			FrameMain:      main,
			FrameLeftRail:  left,
			FrameRightRail: right,
		},
		SupportsPhoto: lw >= minPhotoWidth,
	}
}

func atsLayout(p geom.Paper, m geom.Margins, _ Options) Geometry {
	return Geometry{
		Frames:        map[FrameName]geom.Frame{FrameMain: p.ContentBox(m)},
		SupportsPhoto: false,
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	return math.Max(lo, math.Min(hi, v))
}
