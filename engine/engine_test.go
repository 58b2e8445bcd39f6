package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/ByLCY/nexal/constraints"
	"github.com/ByLCY/nexal/content"
	"github.com/ByLCY/nexal/design"
	"github.com/ByLCY/nexal/diag"
	"github.com/ByLCY/nexal/layout"
	"github.com/ByLCY/nexal/measure"
	"github.com/ByLCY/nexal/paginate"
	"github.com/ByLCY/nexal/scene"
)

// recordingLogger 记录告警，验证回退确实被上报。
type recordingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Debug(string, ...diag.Field) {}
func (l *recordingLogger) Info(string, ...diag.Field)  {}
func (l *recordingLogger) Error(string, ...diag.Field) {}
func (l *recordingLogger) With(...diag.Field) diag.Logger { return l }
func (l *recordingLogger) Warn(msg string, fields ...diag.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	parts := []string{msg}
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Key(), f.Value()))
	}
	l.warns = append(l.warns, strings.Join(parts, " "))
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(measure.NewBasic(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func run(t *testing.T, e *Engine, req Request) *Result {
	t.Helper()
	res, err := e.Run(req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return res
}

func sentence(n int, seed string) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("%s%d", seed, i%7)
	}
	return strings.Join(words, " ")
}

func imageNodes(tree *layout.Tree) []string {
	var ids []string
	for _, pg := range tree.Pages {
		layout.Walk(pg, func(n *layout.Node) bool {
			if n.Type == scene.TypeImage {
				ids = append(ids, n.ID)
			}
			return true
		})
	}
	return ids
}

func TestNewRequiresMeasurer(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNoMeasurer) {
		t.Fatalf("expected ErrNoMeasurer, got %v", err)
	}
	var e *Engine
	if _, err := e.Run(Request{}); !errors.Is(err, ErrNoMeasurer) {
		t.Fatalf("nil engine should report ErrNoMeasurer, got %v", err)
	}
}

func TestNewRejectsIncompleteTables(t *testing.T) {
	presets := constraints.DefaultPresets()
	delete(presets, constraints.PresetSidebar)
	if _, err := New(measure.NewBasic(), WithPresets(presets)); !errors.Is(err, ErrIncompleteTable) {
		t.Fatalf("missing default preset should be rejected, got %v", err)
	}
	presets = constraints.DefaultPresets()
	presets["CUSTOM"] = constraints.Preset{ID: "CUSTOM"}
	if _, err := New(measure.NewBasic(), WithPresets(presets)); !errors.Is(err, ErrIncompleteTable) {
		t.Fatalf("preset without layout should be rejected, got %v", err)
	}
	regions := constraints.DefaultRegions()
	delete(regions, constraints.DefaultRegion)
	if _, err := New(measure.NewBasic(), WithRegions(regions)); !errors.Is(err, ErrIncompleteTable) {
		t.Fatalf("missing default region should be rejected, got %v", err)
	}
	if _, err := New(measure.NewBasic(), WithPairings(map[string]design.Pairing{})); !errors.Is(err, ErrIncompleteTable) {
		t.Fatalf("missing default pairing should be rejected, got %v", err)
	}
}

func TestScenarioUSATSOnePage(t *testing.T) {
	m := &content.Model{
		Identity: &content.Identity{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", PhotoURL: "ada.png"},
		Experiences: []content.Experience{{
			Role: "Analyst", Company: "Analytical Engines", StartDate: "1842", EndDate: "1843",
			Tasks: []string{"Wrote the first program."},
		}},
	}
	res := run(t, newEngine(t), Request{Content: m, Region: "US", Preset: constraints.PresetATSOneColumn})
	tree := res.Tree
	if len(tree.Pages) != 1 || tree.Meta.DidPaginate {
		t.Fatalf("expected a single page, got %d", len(tree.Pages))
	}
	if tree.Find("main.identity") == nil || tree.Find("main.experience") == nil {
		t.Fatalf("page 1 should contain identity and experience sections")
	}
	if ids := imageNodes(tree); len(ids) != 0 {
		t.Fatalf("US discourages photos, found %v", ids)
	}
}

func TestScenarioFRSidebarPaginates(t *testing.T) {
	m := &content.Model{
		Identity: &content.Identity{FirstName: "Marie", LastName: "Curie", PhotoURL: "marie.png"},
		Skills:   []content.Skill{{Name: "Radiochemistry"}},
	}
	for i := 1; i <= 8; i++ {
		m.Experiences = append(m.Experiences, content.Experience{
			Role:      "Researcher",
			Company:   fmt.Sprintf("Institut %d", i),
			StartDate: "1900",
			Tasks:     []string{sentence(60, "measure"), sentence(50, "isolate"), sentence(40, "publish")},
		})
	}
	res := run(t, newEngine(t), Request{Content: m, Region: "FR", Preset: constraints.PresetSidebar})
	tree := res.Tree
	if len(tree.Pages) < 2 || !tree.Meta.DidPaginate {
		t.Fatalf("expected pagination, got %d pages", len(tree.Pages))
	}
	for i := 1; i <= 8; i++ {
		company := fmt.Sprintf("Institut %d", i)
		pages := 0
		for _, pg := range tree.Pages {
			for _, leaf := range layout.Leaves(pg) {
				if leaf.Content == company {
					pages++
				}
			}
		}
		if pages != 1 {
			t.Fatalf("%s appears on %d pages", company, pages)
		}
	}
	if ids := imageNodes(tree); len(ids) != 1 {
		t.Fatalf("FR sidebar should carry one photo, got %v", ids)
	}
}

func TestScenarioSplitHeaderGeometry(t *testing.T) {
	m := &content.Model{Identity: &content.Identity{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"}}
	res := run(t, newEngine(t), Request{Content: m, Region: "INTL", Preset: constraints.PresetSplitHeader})
	c := res.Constraints
	left, _ := c.Frame(constraints.FrameHeaderLeft)
	right, _ := c.Frame(constraints.FrameHeaderRight)
	gap := right.X - left.Right()
	if math.Abs(gap-18) > 1e-9 {
		t.Fatalf("gap = %v, want 18", gap)
	}
	if math.Abs(left.Width+gap+right.Width-c.Paper.Width) > 1e-9 {
		t.Fatalf("header band does not span the paper: %v + %v + %v != %v", left.Width, gap, right.Width, c.Paper.Width)
	}
	if left.Intersects(right, 0) {
		t.Fatalf("header halves overlap")
	}
	page := res.Tree.Pages[0]
	if layout.ZoneOf(page, constraints.FrameHeaderRight) == nil {
		t.Fatalf("contact lines should be placed in headerRight")
	}
}

func TestScenarioOpenEndedDates(t *testing.T) {
	m := &content.Model{Experiences: []content.Experience{{Role: "Engineer", Company: "Acme", StartDate: "2022"}}}
	res := run(t, newEngine(t), Request{Content: m, Region: "INTL", Preset: constraints.PresetATSOneColumn})
	dates := res.Tree.Find("main.experience.item-1.dates")
	if dates == nil || dates.Content != "2022 - Present" {
		t.Fatalf("dates = %+v", dates)
	}
}

func TestScenarioUnknownPresetFallsBack(t *testing.T) {
	logger := &recordingLogger{}
	e := newEngine(t, WithLogger(logger))
	m := &content.Model{Identity: &content.Identity{FirstName: "Alan"}}
	res := run(t, e, Request{Content: m, Region: "FR", Preset: "FOO"})
	want := constraints.Resolve("FR", constraints.PresetSidebar, constraints.Options{})
	if res.Constraints.Preset != constraints.PresetSidebar {
		t.Fatalf("preset = %s", res.Constraints.Preset)
	}
	for name, f := range want.Frames {
		if res.Constraints.Frames[name] != f {
			t.Fatalf("frame %s = %+v, want %+v", name, res.Constraints.Frames[name], f)
		}
	}
	found := false
	for _, w := range logger.warns {
		if strings.Contains(w, "FOO") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a warning about FOO, got %v", logger.warns)
	}
	if len(res.Tree.Meta.Fallbacks) == 0 {
		t.Fatalf("fallback should be listed in meta")
	}
}

func TestScenarioTaskSplitsIntoFragments(t *testing.T) {
	task := sentence(450, "deliver")
	m := &content.Model{
		Summary: sentence(150, "overview"),
		Experiences: []content.Experience{{
			Role: "Engineer", Company: "Acme", StartDate: "2020", EndDate: "2024",
			Tasks: []string{task},
		}},
	}
	res := run(t, newEngine(t), Request{Content: m, Region: "INTL", Preset: constraints.PresetATSOneColumn})
	id := "main.experience.item-1.task-1"
	var parts []*layout.Node
	for _, pg := range res.Tree.Pages {
		for _, leaf := range layout.Leaves(pg) {
			if paginate.BaseID(leaf.ID) == id {
				parts = append(parts, leaf)
			}
		}
	}
	if len(parts) < 2 || parts[0].ID != id+"@part0" || parts[1].ID != id+"@part1" {
		t.Fatalf("expected ordered fragments, got %d", len(parts))
	}
	var joined strings.Builder
	for _, p := range parts {
		joined.WriteString(p.Content)
	}
	if joined.String() != task {
		t.Fatalf("fragments do not reassemble the task")
	}
}

func TestDesignLocaleAndLayoutDefaults(t *testing.T) {
	spec := design.Spec{
		Layout: design.LayoutSpec{Preset: constraints.PresetTopHeader, SidebarSide: "right"},
		Locale: design.LocaleSpec{Region: "jp", PaperFormat: "letter"},
	}
	m := &content.Model{Identity: &content.Identity{FirstName: "Taro", LastName: "Yamada"}}
	e := newEngine(t)
	res := run(t, e, Request{Content: m, Design: spec})
	c := res.Constraints
	if c.Region.ID != "JP" || c.Preset != constraints.PresetTopHeader {
		t.Fatalf("design locale/layout not applied: %s %s", c.Region.ID, c.Preset)
	}
	if c.Paper.Format != "LETTER" {
		t.Fatalf("paper override not applied: %+v", c.Paper)
	}
	if c.SidebarPosition != constraints.SideRight {
		t.Fatalf("sidebar side not applied")
	}
	if name := res.Tree.Find("header.identity.name"); name == nil || name.Content != "Yamada Taro" {
		t.Fatalf("JP name should be family-first, got %+v", name)
	}
	if len(res.Tree.Meta.Fallbacks) != 0 {
		t.Fatalf("no fallback expected, got %v", res.Tree.Meta.Fallbacks)
	}

	// 请求参数优先于设计文件
	res = run(t, e, Request{Content: m, Design: spec, Region: "US", Preset: constraints.PresetSidebar})
	if res.Constraints.Region.ID != "US" || res.Constraints.Preset != constraints.PresetSidebar {
		t.Fatalf("request overrides ignored")
	}
	if e.regions["JP"].Paper.Format != "A4" {
		t.Fatalf("engine region table must not be modified")
	}
}

func TestDeterministicSignaturesAndDocumentID(t *testing.T) {
	m := &content.Model{
		Identity:    &content.Identity{FirstName: "Ada"},
		Summary:     sentence(80, "note"),
		Experiences: []content.Experience{{Role: "Analyst", Company: "Engines", Tasks: []string{sentence(40, "x")}}},
	}
	e := newEngine(t)
	a := run(t, e, Request{Content: m, Region: "GB", Preset: constraints.PresetLeftRail}).Tree
	b := run(t, e, Request{Content: m, Region: "GB", Preset: constraints.PresetLeftRail}).Tree
	if strings.Join(a.Meta.PageSignatures, ",") != strings.Join(b.Meta.PageSignatures, ",") {
		t.Fatalf("signatures differ between identical runs")
	}
	if a.Meta.DocumentID == "" || a.Meta.DocumentID != b.Meta.DocumentID {
		t.Fatalf("document id should be stable: %q %q", a.Meta.DocumentID, b.Meta.DocumentID)
	}
	m.Summary = "changed"
	c := run(t, e, Request{Content: m, Region: "GB", Preset: constraints.PresetLeftRail}).Tree
	if c.Meta.DocumentID == a.Meta.DocumentID {
		t.Fatalf("different layout should change the document id")
	}
}

func TestConcurrentRuns(t *testing.T) {
	e := newEngine(t)
	m := &content.Model{
		Identity:    &content.Identity{FirstName: "Ada", LastName: "Lovelace"},
		Experiences: []content.Experience{{Role: "Analyst", Company: "Engines", Tasks: []string{sentence(300, "loop")}}},
	}
	req := Request{Content: m, Region: "DE", Preset: constraints.PresetDualSidebar}
	want := run(t, e, req).Tree.Meta.DocumentID

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := e.Run(req)
			if err == nil {
				ids[i] = res.Tree.Meta.DocumentID
			}
		}(i)
	}
	wg.Wait()
	for i, id := range ids {
		if id != want {
			t.Fatalf("run %d produced %q, want %q", i, id, want)
		}
	}
}

func TestEveryPresetHasNoLoss(t *testing.T) {
	m := &content.Model{
		Identity:    &content.Identity{FirstName: "Lin", LastName: "Chen", Email: "lin@example.cn", PhotoURL: "lin.jpg"},
		Summary:     sentence(60, "summary"),
		Experiences: []content.Experience{{Role: "Lead", Company: "Studio", StartDate: "2019", Tasks: []string{sentence(500, "build"), "Short"}}},
		Education:   []content.Education{{Degree: "BSc", School: "Tsinghua"}},
		Skills:      []content.Skill{{Name: "Go", Level: "Expert"}},
		Languages:   []content.Language{{Name: "Chinese", Level: "Native"}},
	}
	for id := range constraints.DefaultPresets() {
		res := run(t, newEngine(t), Request{Content: m, Region: "CN", Preset: id})
		want := map[string]bool{}
		for _, leaf := range paginate.LeafIDs(res.Single) {
			want[leaf] = true
		}
		got := map[string]bool{}
		for _, leaf := range paginate.LeafIDs(res.Tree) {
			got[paginate.BaseID(leaf)] = true
		}
		if len(got) != len(want) {
			t.Fatalf("%s: %d leaf ids after pagination, want %d", id, len(got), len(want))
		}
		for leaf := range want {
			if !got[leaf] {
				t.Fatalf("%s: lost leaf %s", id, leaf)
			}
		}
	}
}

func TestZonesNeverOverlap(t *testing.T) {
	m := &content.Model{
		Identity: &content.Identity{
			FirstName: "Marie", LastName: "Curie", Headline: "Physicist and chemist",
			Email: "marie@example.fr", Phone: "+33 1 23 45 67 89", Location: "Paris",
			Website: "curie.example.fr", PhotoURL: "marie.png",
		},
		Summary:     sentence(80, "radium"),
		Experiences: []content.Experience{{Role: "Professor", Company: "Sorbonne", StartDate: "1906", Tasks: []string{sentence(300, "lecture")}}},
		Skills:      []content.Skill{{Name: "Radiochemistry"}},
	}
	for id := range constraints.DefaultPresets() {
		res := run(t, newEngine(t), Request{Content: m, Region: "FR", Preset: id})
		for i, pg := range res.Tree.Pages {
			for a := 0; a < len(pg.Children); a++ {
				for b := a + 1; b < len(pg.Children); b++ {
					za, zb := pg.Children[a], pg.Children[b]
					if za.Frame.Intersects(zb.Frame, 1e-6) {
						t.Fatalf("%s page %d: zone %s %+v overlaps %s %+v", id, i+1, za.ID, za.Frame, zb.ID, zb.Frame)
					}
				}
			}
		}
		checkEngineNoLoss(t, id, res)
	}
}

// checkEngineNoLoss 断言分页前后的叶子集合一致。
func checkEngineNoLoss(t *testing.T, id string, res *Result) {
	t.Helper()
	want := paginate.LeafIDs(res.Single)
	got := map[string]bool{}
	for _, leaf := range paginate.LeafIDs(res.Tree) {
		got[paginate.BaseID(leaf)] = true
	}
	for _, leaf := range want {
		if !got[leaf] {
			t.Fatalf("%s: lost leaf %s", id, leaf)
		}
	}
}
