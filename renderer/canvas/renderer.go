package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/nexal/design"
	"github.com/ByLCY/nexal/diag"
	"github.com/ByLCY/nexal/geom"
	"github.com/ByLCY/nexal/layout"
	"github.com/ByLCY/nexal/measure"
	"github.com/ByLCY/nexal/renderer"
	"github.com/ByLCY/nexal/richtext"
)

const ruleGap = 1.5 // 标题下划线与文字底部的距离（pt）

// ErrNoFont 表示某个字体族没有可加载的字体文件，无法绘制文字。
var ErrNoFont = errors.New("没有可用字体")

// Renderer draws paginated layout trees via github.com/tdewolff/canvas
// and measures text with the same font faces.
type Renderer struct {
	baseDir string
	logger  diag.Logger

	// injected resources
	fonts      map[string]FontFiles // by family name
	defaults   FontFiles
	imageBlobs map[string][]byte // by unique name

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
	missing  map[string]error

	// fallback 在字体不可用时提供测量，保证布局仍能完成。
	fallback layout.Measurer
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// Fonts 按字体族名提供字体文件；未列出的字体族使用 Default。
	Fonts   map[string]FontFiles
	Default FontFiles
	Images  map[string]Resource // built-in images accessible via built-in:<name>
	Logger  diag.Logger
}

// FontFiles 是一个字体族的常规与粗体字形，Bold 为空时复用 Regular。
type FontFiles struct {
	Regular Resource `yaml:"regular"`
	Bold    Resource `yaml:"bold"`
}

func (f FontFiles) empty() bool { return f.Regular.empty() && f.Bold.empty() }

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte `yaml:"-"`
	Path  string `yaml:"path"`
}

func (r Resource) empty() bool { return len(r.Bytes) == 0 && r.Path == "" }

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:    opts.BaseDir,
		logger:     diag.OrNop(opts.Logger),
		fonts:      map[string]FontFiles{},
		defaults:   opts.Default,
		imageBlobs: map[string][]byte{},
		families:   map[string]*canvas.FontFamily{},
		missing:    map[string]error{},
		fallback:   measure.NewBasic(),
	}
	for name, files := range opts.Fonts {
		if name == "" || files.empty() {
			continue
		}
		r.fonts[strings.ToLower(name)] = files
	}
	// ingest images
	for name, res := range opts.Images {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.imageBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 使用时才报错
			if len(data) > 0 {
				r.imageBlobs[name] = data
			}
		}
	}
	return r
}

// Measure 实现 layout.Measurer：用真实字体宽度贪心折行，行高为字号乘以行高倍数。
// 字体族不可用时退回点阵测量器。
func (r *Renderer) Measure(text string, font layout.FontSpec, maxWidth float64) layout.Size {
	if font.Size <= 0 {
		return r.fallback.Measure(text, font, maxWidth)
	}
	face, err := r.fontFace(font.Family, isBold(font.Weight), font.Size, design.Color{})
	if err != nil {
		return r.fallback.Measure(text, font, maxWidth)
	}
	lines := measure.Wrap(text, maxWidth, widthFunc(face))
	lh := font.LineHeight
	if lh <= 0 {
		lh = 1.2
	}
	return layout.Size{
		Width:  measure.Widest(lines),
		Height: float64(len(lines)) * font.Size * lh,
	}
}

// Render renders the paginated tree into a PDF byte slice.
func (r *Renderer) Render(tree *layout.Tree) ([]byte, error) {
	if tree == nil {
		return nil, fmt.Errorf("布局树为空")
	}
	if len(tree.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	var buf bytes.Buffer
	first := tree.Pages[0].Frame
	writer := pdf.New(&buf, toMm(first.Width), toMm(first.Height), nil)
	writer.SetInfo(documentTitle(tree), tree.Meta.DocumentID, "", "", "nexal")
	for i, page := range tree.Pages {
		w, h := toMm(page.Frame.Width), toMm(page.Frame.Height)
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("渲染第 %d 页失败: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawPage(ctx *canvas.Context, page *layout.Node) error {
	for _, op := range plan(page) {
		var err error
		switch op.kind {
		case opFill:
			r.drawFill(ctx, op.frame, *op.node.Style.Background)
		case opRule:
			r.drawRule(ctx, op.frame, op.node.Style)
		case opText:
			err = r.drawText(ctx, op.frame, op.node)
		case opBullet:
			err = r.drawBullet(ctx, op.frame, op.node.Style)
		case opImage:
			err = r.drawImage(ctx, op.frame, op.node.Content)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawFill(ctx *canvas.Context, f geom.Frame, c design.Color) {
	ctx.SetFillColor(colorFromDesign(c))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeWidth(0)
	ctx.DrawPath(toMm(f.X), toMm(f.Y), canvas.Rectangle(toMm(f.Width), toMm(f.Height)))
}

// drawRule 在文字底部画一条与节点等宽的横线，dashed 样式按固定步长分段。
func (r *Renderer) drawRule(ctx *canvas.Context, f geom.Frame, st layout.Style) {
	ctx.SetStrokeColor(colorFromDesign(st.BorderColor))
	ctx.SetStrokeWidth(toMm(st.Border.Width))
	width := toMm(f.Width)
	p := &canvas.Path{}
	if st.Border.Style == "dashed" {
		dash, space := toMm(3), toMm(2)
		for x := 0.0; x < width; x += dash + space {
			p.MoveTo(x, 0)
			p.LineTo(min(x+dash, width), 0)
		}
	} else {
		p.MoveTo(0, 0)
		p.LineTo(width, 0)
	}
	ctx.DrawPath(toMm(f.X), toMm(f.Bottom()+ruleGap), p)
}

func (r *Renderer) drawText(ctx *canvas.Context, f geom.Frame, n *layout.Node) error {
	st := n.Style
	face, err := r.fontFace(st.FontFamily, isBold(st.Weight), st.FontSize, st.Color)
	if err != nil {
		return fmt.Errorf("绘制 %s: %w", n.ID, err)
	}
	content := richtext.Transform(n.Content, st.TextTransform)
	lines := measure.Wrap(content, f.Width, widthFunc(face))

	var textAlign canvas.TextAlign
	anchorX := f.X
	switch strings.ToLower(st.Align) {
	case "center":
		textAlign = canvas.Center
		anchorX = f.X + f.Width/2
	case "right", "end":
		textAlign = canvas.Right
		anchorX = f.X + f.Width
	default:
		textAlign = canvas.Left
	}

	advance := st.FontSize * st.LineHeight
	if advance <= 0 {
		advance = st.FontSize * 1.2
	}
	// 基线位置：行顶部加上字体上升部（Ascent 为 mm）
	ascent := face.Metrics().Ascent
	cursorY := f.Y
	for _, line := range lines {
		textLine := canvas.NewTextLine(face, line.Content, textAlign)
		ctx.DrawText(toMm(anchorX), toMm(cursorY)+ascent, textLine)
		cursorY += advance
	}
	return nil
}

func (r *Renderer) drawBullet(ctx *canvas.Context, f geom.Frame, st layout.Style) error {
	face, err := r.fontFace(st.FontFamily, false, st.FontSize, st.Color)
	if err != nil {
		return err
	}
	textLine := canvas.NewTextLine(face, st.Bullet, canvas.Left)
	ctx.DrawText(toMm(f.X), toMm(f.Y)+face.Metrics().Ascent, textLine)
	return nil
}

// drawImage 按 frame 尺寸缩放绘制照片。远程地址不在渲染器中下载，直接跳过。
func (r *Renderer) drawImage(ctx *canvas.Context, f geom.Frame, src string) error {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "data:") {
		r.logger.Warn("跳过远程图片", diag.String("src", src))
		return nil
	}
	img, err := r.loadImage(src)
	if err != nil {
		return err
	}
	widthMm := toMm(f.Width)
	if widthMm <= 0 || img.Bounds().Dx() == 0 {
		return nil
	}
	dpmm := float64(img.Bounds().Dx()) / widthMm
	ctx.DrawImage(toMm(f.X), toMm(f.Y), img, canvas.DPMM(dpmm))
	return nil
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	if strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "builtin:") {
		name := strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:")
		blob, ok := r.imageBlobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		img, _, err := image.Decode(bytes.NewReader(blob))
		if err != nil {
			return nil, fmt.Errorf("解码内置图片 built-in:%s 失败: %w", name, err)
		}
		return img, nil
	}
	path := strings.TrimPrefix(src, "file://")
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用路径：%s（请改用 built-in:）", src)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
	}
	return img, nil
}

// fontFace 返回字号为 size（pt）的字体面。
func (r *Renderer) fontFace(family string, bold bool, size float64, col design.Color) (*canvas.FontFace, error) {
	fam, err := r.ensureFontFamily(family)
	if err != nil {
		return nil, err
	}
	style := canvas.FontRegular
	if bold {
		style = canvas.FontBold
	}
	return fam.Face(size, colorFromDesign(col), style, canvas.FontNormal), nil
}

func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if fam, ok := r.families[key]; ok {
		return fam, nil
	}
	if err, ok := r.missing[key]; ok {
		return nil, err
	}

	files, ok := r.fonts[key]
	if !ok {
		files = r.defaults
	}
	fam, err := r.loadFamily(name, files)
	if err != nil {
		r.logger.Warn("字体不可用，改用点阵测量", diag.String("family", name), diag.Error("error", err))
		r.missing[key] = err
		return nil, err
	}
	r.families[key] = fam
	return fam, nil
}

func (r *Renderer) loadFamily(name string, files FontFiles) (*canvas.FontFamily, error) {
	if files.empty() {
		return nil, fmt.Errorf("字体族 %s: %w", name, ErrNoFont)
	}
	regular, bold := files.Regular, files.Bold
	if regular.empty() {
		regular = bold
	}
	if bold.empty() {
		bold = regular
	}
	family := canvas.NewFontFamily(name)
	for _, v := range []struct {
		res   Resource
		style canvas.FontStyle
	}{{regular, canvas.FontRegular}, {bold, canvas.FontBold}} {
		data, err := r.loadBytes(v.res)
		if err != nil {
			return nil, fmt.Errorf("字体族 %s: %w", name, err)
		}
		if err := family.LoadFont(data, 0, v.style); err != nil {
			return nil, fmt.Errorf("加载字体族 %s 失败: %w", name, err)
		}
	}
	return family, nil
}

func (r *Renderer) loadBytes(res Resource) ([]byte, error) {
	if len(res.Bytes) > 0 {
		return res.Bytes, nil
	}
	path := res.Path
	if r.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s", res.Path)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", res.Path, err)
	}
	return data, nil
}

// widthFunc 把 canvas 的毫米宽度换算为 pt。
func widthFunc(face *canvas.FontFace) measure.WidthFunc {
	return func(s string) float64 { return toPt(face.TextWidth(s)) }
}

func isBold(weight string) bool { return strings.EqualFold(weight, "bold") }

func colorFromDesign(c design.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * geom.MmToPt }

// toMm 将点(pt)转换为毫米(mm)。
func toMm(pt float64) float64 { return pt * geom.PtToMm }
