// Package config 读取命令行工具的 YAML 配置。命令行参数在 main 中覆盖这里的值。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/nexal/constraints"
	"github.com/ByLCY/nexal/design"
	canvasrenderer "github.com/ByLCY/nexal/renderer/canvas"
)

// Measurer 名称。
const (
	MeasurerBasic  = "basic"
	MeasurerCanvas = "canvas"
)

// Config 是 nexal 命令行的全部配置。
type Config struct {
	Render RenderConfig `yaml:"render"`
	Fonts  FontsConfig  `yaml:"fonts"`
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

// RenderConfig 选择 region、preset 与测量方式。Region/Preset 为空时依次取设计文件与内置默认值。
type RenderConfig struct {
	Region  string              `yaml:"region"`
	Preset  string              `yaml:"preset"`
	Options constraints.Options `yaml:"options"`
	// Measurer 为 basic（点阵度量，结果与平台无关）或 canvas（使用 Fonts 中的字体文件）。
	// 配置了字体时总是 canvas，PDF 的折行才与排版结果一致。
	Measurer string `yaml:"measurer"`
}

// FontsConfig 列出预览渲染可用的字体文件，路径相对 BaseDir。
type FontsConfig struct {
	BaseDir  string                              `yaml:"base_dir"`
	Default  canvasrenderer.FontFiles            `yaml:"default"`
	Families map[string]canvasrenderer.FontFiles `yaml:"families"`
}

// OutputConfig 是输出路径。
type OutputConfig struct {
	PDF   string `yaml:"pdf"`
	Debug string `yaml:"debug"`
}

// LogConfig 控制日志详细程度。
type LogConfig struct {
	Debug bool `yaml:"debug"`
}

// Default 返回内置默认配置。
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			Measurer: MeasurerBasic,
		},
		Output: OutputConfig{
			PDF: "output/cv.pdf",
		},
	}
}

// Load 读取 YAML 配置，未出现的字段保留默认值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Fonts.BaseDir != "" && !filepath.IsAbs(cfg.Fonts.BaseDir) {
		cfg.Fonts.BaseDir = filepath.Join(filepath.Dir(path), cfg.Fonts.BaseDir)
	}
	return cfg, nil
}

// LoadOrDefault 在 path 为空或文件不存在时返回默认配置。
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Save 将配置写为 YAML。
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// Validate 检查取值范围，并在配置了字体时把测量方式固定为 canvas。
func (c *Config) Validate() error {
	c.Render.Measurer = strings.ToLower(strings.TrimSpace(c.Render.Measurer))
	switch c.Render.Measurer {
	case "":
		c.Render.Measurer = MeasurerBasic
	case MeasurerBasic, MeasurerCanvas:
	default:
		return fmt.Errorf("未知的 measurer %q（可选 basic、canvas）", c.Render.Measurer)
	}
	if c.HasFonts() {
		c.Render.Measurer = MeasurerCanvas
	}
	if c.Render.Measurer == MeasurerCanvas && !c.HasFonts() {
		return fmt.Errorf("measurer 为 canvas 时必须配置字体文件")
	}
	return nil
}

// HasFonts 报告是否配置了任何字体文件。
func (c *Config) HasFonts() bool {
	return c.Fonts.Default.Regular.Path != "" || c.Fonts.Default.Bold.Path != "" || len(c.Fonts.Families) > 0
}

// Capabilities 返回已配置字体族构成的能力描述；只配置了默认字体时不限制字体族。
func (c *Config) Capabilities() *design.Capabilities {
	if len(c.Fonts.Families) == 0 || c.HasDefaultFont() {
		return nil
	}
	caps := &design.Capabilities{}
	for name := range c.Fonts.Families {
		caps.Families = append(caps.Families, name)
	}
	sort.Strings(caps.Families)
	return caps
}

// HasDefaultFont 报告是否配置了兜底字体。
func (c *Config) HasDefaultFont() bool {
	return c.Fonts.Default.Regular.Path != "" || c.Fonts.Default.Bold.Path != ""
}

// RendererOptions 构造预览渲染器选项。
func (c *Config) RendererOptions() canvasrenderer.Options {
	return canvasrenderer.Options{
		BaseDir: c.Fonts.BaseDir,
		Fonts:   c.Fonts.Families,
		Default: c.Fonts.Default,
	}
}
