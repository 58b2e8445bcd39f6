// Package binding 解析文本模板中的 ${path|filter} 占位符，用于姓名格式等模板。
// path 以点号分隔，可带 [n] 下标；filter 依次作用于取到的值。
package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var placeholder = regexp.MustCompile(`\$\{([^}]*)\}`)

// Filter 转换占位符的取值。
type Filter func(string) string

var filters = map[string]Filter{
	"upper":   cases.Upper(language.Und).String,
	"lower":   cases.Lower(language.Und).String,
	"title":   cases.Title(language.Und).String,
	"trim":    strings.TrimSpace,
	"initial": initial,
}

// initial 返回首字母的大写形式，例如 "marie" → "M"。
func initial(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(s)
	return cases.Upper(language.Und).String(string(r))
}

type step struct {
	key   string
	index int // key 为空时有效
}

type slot struct {
	path    string
	steps   []step
	filters []Filter
}

// Template 是编译后的模板，可重复执行。
type Template struct {
	literals []string // len(literals) == len(slots)+1
	slots    []slot
}

// Compile 解析模板；空路径、非法下标与未知 filter 返回错误。
func Compile(text string) (*Template, error) {
	t := &Template{}
	last := 0
	for _, loc := range placeholder.FindAllStringSubmatchIndex(text, -1) {
		s, err := parseSlot(text[loc[0]:loc[1]], text[loc[2]:loc[3]])
		if err != nil {
			return nil, err
		}
		t.literals = append(t.literals, text[last:loc[0]])
		t.slots = append(t.slots, s)
		last = loc[1]
	}
	t.literals = append(t.literals, text[last:])
	return t, nil
}

// MustCompile 与 Compile 相同，出错时 panic，用于内置模板。
func MustCompile(text string) *Template {
	t, err := Compile(text)
	if err != nil {
		panic(err)
	}
	return t
}

func parseSlot(raw, body string) (slot, error) {
	parts := strings.Split(body, "|")
	s := slot{path: strings.TrimSpace(parts[0])}
	if s.path == "" {
		return slot{}, fmt.Errorf("占位符 %s 缺少路径", raw)
	}
	for _, seg := range strings.Split(s.path, ".") {
		steps, err := parseSegment(seg)
		if err != nil {
			return slot{}, fmt.Errorf("占位符 %s: %w", raw, err)
		}
		s.steps = append(s.steps, steps...)
	}
	for _, name := range parts[1:] {
		name = strings.ToLower(strings.TrimSpace(name))
		f, ok := filters[name]
		if !ok {
			return slot{}, fmt.Errorf("占位符 %s: 未知 filter %q", raw, name)
		}
		s.filters = append(s.filters, f)
	}
	return s, nil
}

// parseSegment 解析 name[0][1] 形式的路径段。
func parseSegment(seg string) ([]step, error) {
	name, rest, _ := strings.Cut(seg, "[")
	var out []step
	if name != "" {
		out = append(out, step{key: name})
	}
	if rest == "" {
		if name == "" {
			return nil, fmt.Errorf("空的路径段")
		}
		return out, nil
	}
	for _, idx := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("非法下标 [%s]", idx)
		}
		out = append(out, step{index: n})
	}
	return out, nil
}

// Execute 用 data 填充模板：缺失或为空的值替换为空串并合并多余空白，第二个返回值列出缺失的路径。
func (t *Template) Execute(data any) (string, []string) {
	var missing []string
	out := t.render(data, func(s slot) {
		missing = append(missing, s.path)
	})
	return strings.Join(strings.Fields(out), " "), missing
}

func (t *Template) render(data any, onMissing func(slot)) string {
	var b strings.Builder
	for i, s := range t.slots {
		b.WriteString(t.literals[i])
		val, ok := lookup(data, s.steps)
		if !ok || val == nil {
			onMissing(s)
			continue
		}
		str := fmt.Sprint(val)
		for _, f := range s.filters {
			str = f(str)
		}
		b.WriteString(str)
	}
	b.WriteString(t.literals[len(t.literals)-1])
	return b.String()
}

// Expand 编译并执行 text；模板非法时去掉全部占位符，缺失列表为空。
func Expand(text string, data any) (string, []string) {
	t, err := Compile(text)
	if err != nil {
		return strings.Join(strings.Fields(placeholder.ReplaceAllString(text, "")), " "), nil
	}
	return t.Execute(data)
}

func lookup(data any, steps []step) (any, bool) {
	current := data
	for _, st := range steps {
		if current == nil {
			return nil, false
		}
		var ok bool
		if st.key != "" {
			switch c := current.(type) {
			case map[string]any:
				current, ok = c[st.key]
			case map[string]string:
				current, ok = c[st.key]
			}
		} else {
			switch c := current.(type) {
			case []any:
				if ok = st.index < len(c); ok {
					current = c[st.index]
				}
			case []string:
				if ok = st.index < len(c); ok {
					current = c[st.index]
				}
			}
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}
