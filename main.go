package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ByLCY/nexal/config"
	"github.com/ByLCY/nexal/content"
	"github.com/ByLCY/nexal/design"
	"github.com/ByLCY/nexal/diag"
	"github.com/ByLCY/nexal/dsl"
	"github.com/ByLCY/nexal/engine"
	"github.com/ByLCY/nexal/layout"
	"github.com/ByLCY/nexal/measure"
	"github.com/ByLCY/nexal/renderer"
	canvasrenderer "github.com/ByLCY/nexal/renderer/canvas"
)

func main() {
	configPath := flag.String("config", "", "YAML 配置文件路径")
	contentPath := flag.String("content", "examples/cv.yaml", "简历内容文件（JSON/YAML）")
	designPath := flag.String("design", "", "设计文件（.nexal/.yaml/.json）")
	region := flag.String("region", "", "地区 id，覆盖配置与设计文件")
	preset := flag.String("preset", "", "版式 preset，覆盖配置与设计文件")
	output := flag.String("out", "", "PDF 输出路径")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	measurer := flag.String("measurer", "", "测量方式：basic 或 canvas")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	overrideString(&cfg.Render.Region, *region)
	overrideString(&cfg.Render.Preset, *preset)
	overrideString(&cfg.Output.PDF, *output)
	overrideString(&cfg.Output.Debug, *debug)
	overrideString(&cfg.Render.Measurer, *measurer)
	cfg.Log.Debug = cfg.Log.Debug || *verbose
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置无效: %v", err)
	}
	if cfg.Fonts.BaseDir == "" {
		cfg.Fonts.BaseDir = filepath.Dir(*contentPath)
	}

	logger := diag.NewStdLogger(log.New(os.Stderr, "", log.LstdFlags), cfg.Log.Debug)
	opts := cfg.RendererOptions()
	opts.Logger = logger
	r := canvasrenderer.NewRendererWithOptions(opts)

	if err := run(cfg, *contentPath, *designPath, r, logger); err != nil {
		log.Fatalf("生成简历失败: %v", err)
	}
}

// run 串联加载、排版、调试输出与渲染。
func run(cfg *config.Config, contentPath, designPath string, r *canvasrenderer.Renderer, logger diag.Logger) error {
	model, err := content.Load(contentPath)
	if err != nil {
		return err
	}
	var spec design.Spec
	if designPath != "" {
		if spec, err = dsl.LoadFile(designPath); err != nil {
			return err
		}
	}

	e, err := engine.New(measurerFor(cfg, r), engine.WithLogger(logger))
	if err != nil {
		return err
	}
	res, err := e.Run(engine.Request{
		Content:      model,
		Design:       spec,
		Region:       cfg.Render.Region,
		Preset:       cfg.Render.Preset,
		Options:      cfg.Render.Options,
		Capabilities: cfg.Capabilities(),
	})
	if err != nil {
		return fmt.Errorf("排版失败: %w", err)
	}

	if cfg.Output.Debug != "" {
		if err := writeDebug(res.Tree, cfg.Output.Debug); err != nil {
			return err
		}
		fmt.Printf("已输出布局：%s\n", cfg.Output.Debug)
	}
	if !cfg.HasFonts() {
		logger.Warn("未配置字体文件，跳过 PDF 输出", diag.Int("pages", len(res.Tree.Pages)))
		return nil
	}
	if err := writePDF(r, res.Tree, cfg.Output.PDF); err != nil {
		return err
	}
	fmt.Printf("已生成 PDF：%s（%d 页）\n", cfg.Output.PDF, len(res.Tree.Pages))
	return nil
}

// measurerFor 在会输出 PDF 时使用渲染器自身的字体度量，保证折行一致。
func measurerFor(cfg *config.Config, r *canvasrenderer.Renderer) layout.Measurer {
	if r != nil && (cfg.HasFonts() || cfg.Render.Measurer == config.MeasurerCanvas) {
		return r
	}
	return measure.NewBasic()
}

func writePDF(r renderer.Renderer, tree *layout.Tree, outputPath string) error {
	if r == nil {
		return errors.New("renderer 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(tree)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(tree *layout.Tree, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(tree, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
