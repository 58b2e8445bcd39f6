package constraints

import (
	"bytes"
	"log"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/nexal/diag"
)

var allPresets = []string{
	PresetSidebar, PresetTopHeader, PresetSplitHeader,
	PresetLeftRail, PresetDualSidebar, PresetATSOneColumn,
}

// TestFramesContainedAndDisjoint 断言：每个 preset 的槽位都在页面内且两两不重叠，main 总是存在。
func TestFramesContainedAndDisjoint(t *testing.T) {
	for _, region := range []string{"US", "FR", "JP", "INTL"} {
		for _, id := range allPresets {
			c := Resolve(region, id, Options{})
			main, ok := c.Frame(FrameMain)
			if !ok || main.Width <= 0 || main.Height <= 0 {
				t.Fatalf("%s/%s: main 缺失或为空: %+v", region, id, main)
			}
			page := c.Paper.Box()
			names := make([]FrameName, 0, len(c.Frames))
			for name, f := range c.Frames {
				if !page.Contains(f) {
					t.Fatalf("%s/%s: 槽位 %s 超出页面: %+v", region, id, name, f)
				}
				names = append(names, name)
			}
			for i := range names {
				for j := i + 1; j < len(names); j++ {
					a, b := c.Frames[names[i]], c.Frames[names[j]]
					if a.Intersects(b, 1e-6) {
						t.Fatalf("%s/%s: %s 与 %s 重叠: %+v %+v", region, id, names[i], names[j], a, b)
					}
				}
			}
		}
	}
}

func TestSplitHeaderSpansPaperWidth(t *testing.T) {
	opts := Options{Gap: 12}
	c := Resolve("FR", PresetSplitHeader, opts)
	left, okL := c.Frame(FrameHeaderLeft)
	right, okR := c.Frame(FrameHeaderRight)
	if !okL || !okR {
		t.Fatalf("SPLIT_HEADER 缺少 headerLeft/headerRight: %+v", c.Frames)
	}
	if got := left.Width + 12 + right.Width; math.Abs(got-c.Paper.Width) > 1e-9 {
		t.Fatalf("headerLeft+gap+headerRight=%g，期望纸宽 %g", got, c.Paper.Width)
	}
	if left.Intersects(right, 0) {
		t.Fatalf("headerLeft 与 headerRight 重叠")
	}
	if math.Abs(right.X-left.Right()-12) > 1e-9 {
		t.Fatalf("左右页眉之间应恰好间隔 gap: left=%+v right=%+v", left, right)
	}
}

func TestUnknownPresetFallsBackToSidebar(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(WithLogger(diag.NewStdLogger(log.New(&buf, "", 0), false)))
	got := r.Resolve("FR", "FOO", Options{})
	want := r.Resolve("FR", PresetSidebar, Options{})
	if got.Preset != PresetSidebar {
		t.Fatalf("未知 preset 应回退为 SIDEBAR，实际 %s", got.Preset)
	}
	if !reflect.DeepEqual(got.Frames, want.Frames) {
		t.Fatalf("回退后的槽位应与 SIDEBAR 一致:\n%+v\n%+v", got.Frames, want.Frames)
	}
	if !strings.Contains(buf.String(), "WARN") || !strings.Contains(buf.String(), "FOO") {
		t.Fatalf("应记录告警，实际日志: %q", buf.String())
	}
	if len(got.Fallbacks) != 1 {
		t.Fatalf("应记录一条回退: %v", got.Fallbacks)
	}
}

func TestUnknownRegionFallsBackToDefault(t *testing.T) {
	c := Resolve("ZZ", PresetATSOneColumn, Options{})
	if c.Region.ID != DefaultRegion {
		t.Fatalf("未知 region 应回退到 %s，实际 %s", DefaultRegion, c.Region.ID)
	}
}

func TestResolveIsPure(t *testing.T) {
	for _, id := range allPresets {
		a := Resolve("DE", id, Options{SidebarWidth: 150})
		b := Resolve("DE", id, Options{SidebarWidth: 150})
		if !reflect.DeepEqual(a, b) {
			t.Fatalf("%s: 两次解析结果不同", id)
		}
	}
}

func TestSupportsPhoto(t *testing.T) {
	cases := map[string]bool{
		PresetSidebar:      true,
		PresetTopHeader:    true,
		PresetSplitHeader:  true,
		PresetLeftRail:     false,
		PresetDualSidebar:  true,
		PresetATSOneColumn: false,
	}
	for id, want := range cases {
		if got := Resolve("FR", id, Options{}).SupportsPhoto; got != want {
			t.Fatalf("%s: SupportsPhoto=%v want %v", id, got, want)
		}
	}
}

func TestSidebarPositionRight(t *testing.T) {
	c := Resolve("FR", PresetSidebar, Options{SidebarPosition: SideRight})
	if c.Frames[FrameSidebar].X <= c.Frames[FrameMain].X {
		t.Fatalf("sidebar 应位于 main 右侧: %+v", c.Frames)
	}
	if c.SidebarPosition != SideRight {
		t.Fatalf("SidebarPosition 未生效")
	}
}

func TestZoneAndContinuationFrame(t *testing.T) {
	c := Resolve("US", PresetSidebar, Options{})
	if c.Zone(SectionSkills) != FrameSidebar || c.Zone(SectionExperience) != FrameMain {
		t.Fatalf("分节槽位错误: %+v", c.Placement)
	}
	cont := c.ContinuationFrame()
	if cont.Y != c.Margins.Top || cont.Height != c.PrintableHeight() || cont.X != c.Frames[FrameMain].X {
		t.Fatalf("续页 main 错误: %+v", cont)
	}
	ats := Resolve("US", PresetATSOneColumn, Options{})
	if ats.Order[2] != SectionSkills {
		t.Fatalf("ATS 顺序应把 skills 提前: %v", ats.Order)
	}
}
