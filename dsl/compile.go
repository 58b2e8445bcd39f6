package dsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/nexal/design"
	"github.com/ByLCY/nexal/geom"
)

var (
	// ErrUnknownKey 表示块内出现无法识别的属性名。
	ErrUnknownKey = errors.New("dsl: 未知属性")
	// ErrBadValue 表示属性值类型或格式不符。
	ErrBadValue = errors.New("dsl: 属性值无效")
)

// Compile 将设计文件 AST 转为 design.Spec。重复的块按出现顺序后者覆盖前者。
func Compile(doc *Document) (design.Spec, error) {
	var spec design.Spec
	if doc == nil {
		return spec, nil
	}
	for _, sec := range doc.Sections {
		var err error
		switch {
		case sec.Tokens != nil:
			err = applyOverride(&spec.Base, sec.Tokens)
		case sec.Layout != nil:
			err = applyLayout(&spec, sec.Layout)
		case sec.Locale != nil:
			err = applyLocale(&spec.Locale, sec.Locale)
		case sec.Labels != nil:
			if spec.Labels == nil {
				spec.Labels = map[string]string{}
			}
			for _, st := range sec.Labels.Statements {
				if st.Value.Array != nil {
					return spec, badValue(st, "标签必须是字符串")
				}
				spec.Labels[st.Key] = st.Value.Text()
			}
		case sec.Override != nil:
			if spec.Sections == nil {
				spec.Sections = map[string]design.Override{}
			}
			o := spec.Sections[sec.Override.Name]
			err = applyOverride(&o, sec.Override.Block)
			spec.Sections[sec.Override.Name] = o
		case sec.Element != nil:
			if spec.Elements == nil {
				spec.Elements = map[string]design.Override{}
			}
			key := sec.Element.Section + "." + sec.Element.Element
			o := spec.Elements[key]
			err = applyOverride(&o, sec.Element.Block)
			spec.Elements[key] = o
		}
		if err != nil {
			return spec, fmt.Errorf("%s 块: %w", sec.Kind(), err)
		}
	}
	return spec, nil
}

// CompileString 解析并编译设计文件文本。
func CompileString(input string) (design.Spec, error) {
	doc, err := ParseString(input)
	if err != nil {
		return design.Spec{}, err
	}
	return Compile(doc)
}

func applyOverride(o *design.Override, b *Block) error {
	if b == nil {
		return nil
	}
	base := 10.0
	for _, st := range b.Statements {
		switch st.Key {
		case "accent", "background", "text", "muted":
			c, err := colorValue(st)
			if err != nil {
				return err
			}
			switch st.Key {
			case "accent":
				o.Accent = &c
			case "background":
				o.Background = &c
			case "text":
				o.Text = &c
			default:
				o.Muted = &c
			}
		case "font-pairing":
			s, err := scalar(st)
			if err != nil {
				return err
			}
			o.FontPairing = &s
		case "base-size":
			v, err := lengthValue(st)
			if err != nil {
				return err
			}
			base = v
			o.BaseSize = &v
		case "line-height-heading", "line-height-body", "line-height-sidebar":
			spec, ok := geom.ParseLineHeight(st.Value.Text())
			if !ok {
				return badValue(st, "行高应为倍数或带单位长度")
			}
			m := spec.Multiplier(base)
			switch st.Key {
			case "line-height-heading":
				o.HeadingLineHeight = &m
			case "line-height-body":
				o.BodyLineHeight = &m
			default:
				o.SidebarLineHeight = &m
			}
		case "border":
			s, err := scalar(st)
			if err != nil {
				return err
			}
			o.BorderStyle = &s
		case "border-width":
			v, err := lengthValue(st)
			if err != nil {
				return err
			}
			o.BorderWidth = &v
		case "bullet":
			s, err := scalar(st)
			if err != nil {
				return err
			}
			o.BulletGlyph = &s
		case "bullet-indent":
			v, err := lengthValue(st)
			if err != nil {
				return err
			}
			o.BulletIndent = &v
		default:
			return unknownKey(st)
		}
	}
	return nil
}

func applyLayout(spec *design.Spec, b *Block) error {
	l := &spec.Layout
	for _, st := range b.Statements {
		switch st.Key {
		case "preset", "header", "sidebar", "name-format":
			s, err := scalar(st)
			if err != nil {
				return err
			}
			switch st.Key {
			case "preset":
				l.Preset = s
			case "header":
				l.HeaderStyle = s
			case "sidebar":
				l.SidebarSide = s
			default:
				spec.NameFormat = s
			}
		case "photo":
			v, err := strconv.ParseBool(st.Value.Text())
			if err != nil {
				return badValue(st, "photo 应为 true/false")
			}
			l.ShowPhoto = &v
		case "photo-scale":
			if st.Value.Number == nil {
				return badValue(st, "photo-scale 应为数字")
			}
			v, err := strconv.ParseFloat(strings.TrimSuffix(*st.Value.Number, "x"), 64)
			if err != nil {
				return badValue(st, err.Error())
			}
			l.PhotoScale = v
		case "order":
			if st.Value.Array == nil {
				return badValue(st, "order 应为数组")
			}
			l.SectionOrder = l.SectionOrder[:0]
			for _, v := range st.Value.Array.Values {
				if v.Array != nil {
					return badValue(st, "order 不支持嵌套数组")
				}
				l.SectionOrder = append(l.SectionOrder, v.Text())
			}
		default:
			return unknownKey(st)
		}
	}
	return nil
}

func applyLocale(l *design.LocaleSpec, b *Block) error {
	for _, st := range b.Statements {
		s, err := scalar(st)
		if err != nil {
			return err
		}
		switch st.Key {
		case "paper":
			l.PaperFormat = s
		case "region":
			l.Region = s
		default:
			return unknownKey(st)
		}
	}
	return nil
}

func scalar(st *Assignment) (string, error) {
	if st.Value == nil || st.Value.Array != nil {
		return "", badValue(st, "需要标量值")
	}
	return st.Value.Text(), nil
}

func colorValue(st *Assignment) (design.Color, error) {
	if st.Value.Color == nil && st.Value.String == nil {
		return design.Color{}, badValue(st, "需要颜色值")
	}
	c, err := design.ParseColor(st.Value.Text())
	if err != nil {
		return design.Color{}, badValue(st, err.Error())
	}
	return c, nil
}

func lengthValue(st *Assignment) (float64, error) {
	if st.Value.Number == nil {
		return 0, badValue(st, "需要长度值")
	}
	l, ok := geom.ParseLength(*st.Value.Number)
	if !ok || l.Value < 0 {
		return 0, badValue(st, "长度格式错误")
	}
	return l.Points(), nil
}

func unknownKey(st *Assignment) error {
	return fmt.Errorf("%w %q (%s)", ErrUnknownKey, st.Key, position(st.Pos))
}

func badValue(st *Assignment, reason string) error {
	return fmt.Errorf("%w: %s %s (%s)", ErrBadValue, st.Key, reason, position(st.Pos))
}

func position(p lexer.Position) string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
