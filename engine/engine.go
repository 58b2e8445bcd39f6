// Package engine 串联约束解析、设计解析、场景构建、布局与分页，是库的入口。
// 对任意内容与设计输入都返回一棵完整的布局树：未知 id 回退、内容缺失省略、超高叶子单独成页，
// 这些情况只体现在 Meta 与日志中。错误只来自构造：未提供测量器，或注入的查找表缺少回退目标。
package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ByLCY/nexal/constraints"
	"github.com/ByLCY/nexal/content"
	"github.com/ByLCY/nexal/design"
	"github.com/ByLCY/nexal/diag"
	"github.com/ByLCY/nexal/geom"
	"github.com/ByLCY/nexal/layout"
	"github.com/ByLCY/nexal/paginate"
	"github.com/ByLCY/nexal/scene"
)

// ErrNoMeasurer 表示调用方没有注入文本测量器。
var ErrNoMeasurer = errors.New("engine: 未提供文本测量器")

// ErrIncompleteTable 表示注入的查找表缺少默认项，回退时无处可去。
var ErrIncompleteTable = errors.New("engine: 查找表缺少默认项")

// documentSpace 是 DocumentID 的 SHA1 命名空间。
var documentSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ByLCY/nexal/document"))

// Request 是一次渲染的全部输入。Region/Preset 非空时覆盖设计文件中的 locale 与 layout。
type Request struct {
	Content      *content.Model
	Design       design.Spec
	Region       string
	Preset       string
	Options      constraints.Options
	Capabilities *design.Capabilities
}

// Result 保留流水线各阶段的产物，便于调试与测试。
type Result struct {
	Constraints constraints.Constraints
	Design      design.Computed
	Scene       *scene.Tree
	// Single 是分页前的单页布局。
	Single *layout.Tree
	Tree   *layout.Tree
}

// Engine 持有测量器与查找表，构造后只读，可被多个 goroutine 同时使用。
type Engine struct {
	measurer layout.Measurer
	logger   diag.Logger
	regions  map[string]constraints.RegionProfile
	presets  map[string]constraints.Preset
	pairings map[string]design.Pairing
}

// Option 配置 Engine。
type Option func(*Engine)

// WithLogger 设置各阶段共用的日志。
func WithLogger(l diag.Logger) Option {
	return func(e *Engine) { e.logger = diag.OrNop(l) }
}

// WithRegions 替换 region 表；表中必须包含 constraints.DefaultRegion。
func WithRegions(regions map[string]constraints.RegionProfile) Option {
	return func(e *Engine) { e.regions = regions }
}

// WithPresets 替换 preset 表；表中必须包含 constraints.DefaultPreset 且每项都有 Layout。
func WithPresets(presets map[string]constraints.Preset) Option {
	return func(e *Engine) { e.presets = presets }
}

// WithPairings 替换字体搭配表；表中必须包含 design.DefaultPairing。
func WithPairings(p map[string]design.Pairing) Option {
	return func(e *Engine) { e.pairings = p }
}

// New 创建 Engine；m 为 nil 时返回 ErrNoMeasurer，查找表不完整时返回 ErrIncompleteTable。
func New(m layout.Measurer, opts ...Option) (*Engine, error) {
	if m == nil {
		return nil, ErrNoMeasurer
	}
	e := &Engine{
		measurer: m,
		logger:   diag.NopLogger{},
		regions:  constraints.DefaultRegions(),
		presets:  constraints.DefaultPresets(),
		pairings: design.DefaultPairings(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.checkTables(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) checkTables() error {
	if _, ok := e.regions[constraints.DefaultRegion]; !ok {
		return fmt.Errorf("%w: region %s", ErrIncompleteTable, constraints.DefaultRegion)
	}
	if _, ok := e.pairings[design.DefaultPairing]; !ok {
		return fmt.Errorf("%w: pairing %s", ErrIncompleteTable, design.DefaultPairing)
	}
	if _, ok := e.presets[constraints.DefaultPreset]; !ok {
		return fmt.Errorf("%w: preset %s", ErrIncompleteTable, constraints.DefaultPreset)
	}
	for id, p := range e.presets {
		if p.Layout == nil {
			return fmt.Errorf("%w: preset %s 缺少 Layout", ErrIncompleteTable, id)
		}
	}
	return nil
}

// Run 执行完整流水线。
func (e *Engine) Run(req Request) (*Result, error) {
	if e == nil || e.measurer == nil {
		return nil, ErrNoMeasurer
	}
	cd := design.NewResolver(design.WithPairings(e.pairings), design.WithLogger(e.logger)).
		Resolve(req.Design, req.Capabilities)

	region := firstNonEmpty(req.Region, cd.Locale.Region, constraints.DefaultRegion)
	preset := firstNonEmpty(req.Preset, cd.Layout.Preset, constraints.DefaultPreset)
	opts := req.Options
	if opts.SidebarPosition == "" && cd.Layout.SidebarSide == string(constraints.SideRight) {
		opts.SidebarPosition = constraints.SideRight
	}

	resolver := constraints.NewResolver(
		constraints.WithRegions(e.regionTable(region, cd.Locale.PaperFormat)),
		constraints.WithPresets(e.presets),
		constraints.WithLogger(e.logger),
	)
	c := resolver.Resolve(region, preset, opts)

	tree := scene.Build(req.Content, cd, c)
	single := layout.NewEngine(e.measurer, cd, layout.WithLogger(e.logger)).Compute(tree, c)
	paged := paginate.New(e.measurer, paginate.WithLogger(e.logger)).Paginate(single, c)
	paged.Meta.DocumentID = documentID(c, paged)

	e.logger.Info("排版完成",
		diag.String("region", c.Region.ID),
		diag.String("preset", c.Preset),
		diag.Int("pages", len(paged.Pages)),
		diag.Int("fallbacks", len(paged.Meta.Fallbacks)),
	)
	return &Result{Constraints: c, Design: cd, Scene: tree, Single: single, Tree: paged}, nil
}

// regionTable 在设计文件指定纸张时返回一份替换了该 region 纸张的表副本。
func (e *Engine) regionTable(region, paperFormat string) map[string]constraints.RegionProfile {
	if paperFormat == "" {
		return e.regions
	}
	paper, ok := geom.LookupPaper(paperFormat)
	if !ok {
		e.logger.Warn("未知纸张规格，使用 region 默认纸张", diag.String("paper", paperFormat))
		return e.regions
	}
	key := strings.ToUpper(strings.TrimSpace(region))
	profile, ok := e.regions[key]
	if !ok || profile.Paper == paper {
		return e.regions
	}
	table := make(map[string]constraints.RegionProfile, len(e.regions))
	for k, v := range e.regions {
		table[k] = v
	}
	profile.Paper = paper
	table[key] = profile
	return table
}

// documentID 由 region、preset 与各页签名派生，相同输入得到相同 id。
func documentID(c constraints.Constraints, tree *layout.Tree) string {
	name := c.Region.ID + "|" + c.Preset + "|" + strings.Join(tree.Meta.PageSignatures, ",")
	return uuid.NewSHA1(documentSpace, []byte(name)).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
