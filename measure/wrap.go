// Package measure 提供与渲染后端无关的贪心折行，以及基于 x/image 点阵字体的确定性测量器。
package measure

import (
	"math"
	"strings"
	"unicode"
)

// Line 是折行后的一行。
type Line struct {
	Content string
	Width   float64
}

// WidthFunc 返回一段文本在某字体下的宽度（pt）。
type WidthFunc func(s string) float64

// Wrap 优先在空白处折行；单个词超过 limit 时在词内拆分。显式换行总是生效。
// limit <= 0 表示不限宽度。
func Wrap(content string, limit float64, width WidthFunc) []Line {
	if limit <= 0 {
		limit = math.MaxFloat64
	}
	lb := &lineBuilder{limit: limit, width: width}
	for _, tok := range Tokenize(content) {
		switch {
		case tok == "\n":
			lb.flush(true)
		case strings.TrimSpace(tok) == "":
			lb.add(tok)
		case width(tok) <= limit:
			lb.fit(tok)
		default:
			for _, chunk := range splitTokenByWidth(tok, limit, width) {
				lb.fit(chunk)
			}
		}
	}
	lb.flush(true)
	return lb.lines
}

// lineBuilder 累积当前行；cur 为已写入片段的宽度和。
type lineBuilder struct {
	limit float64
	width WidthFunc
	buf   strings.Builder
	cur   float64
	lines []Line
}

// fit 在放不下时先换行再写入。
func (lb *lineBuilder) fit(tok string) {
	w := lb.width(tok)
	if lb.cur > 0 && lb.cur+w > lb.limit {
		lb.flush(false)
	}
	lb.write(tok, w)
}

func (lb *lineBuilder) add(tok string) {
	// 行首空白丢弃
	if lb.buf.Len() == 0 {
		return
	}
	lb.write(tok, lb.width(tok))
}

func (lb *lineBuilder) write(tok string, w float64) {
	lb.buf.WriteString(tok)
	lb.cur += w
}

// flush 结束当前行；空行只在 keepEmpty 时保留。
func (lb *lineBuilder) flush(keepEmpty bool) {
	if lb.buf.Len() == 0 {
		if keepEmpty {
			lb.lines = append(lb.lines, Line{})
		}
		return
	}
	// 行尾空白不占宽度
	text := strings.TrimRightFunc(lb.buf.String(), unicode.IsSpace)
	lb.lines = append(lb.lines, Line{Content: text, Width: lb.width(text)})
	lb.buf.Reset()
	lb.cur = 0
}

// Tokenize 把文本切成交替的词与空白片段，换行单独成片。
func Tokenize(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

// splitTokenByWidth 把超宽的词按字符切成不超过 limit 的片段，每片至少一个字符。
func splitTokenByWidth(token string, limit float64, width WidthFunc) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var piece []rune
	for _, r := range token {
		if len(piece) > 0 && width(string(append(piece, r))) > limit {
			parts = append(parts, string(piece))
			piece = piece[:0]
		}
		piece = append(piece, r)
	}
	if len(piece) > 0 {
		parts = append(parts, string(piece))
	}
	return parts
}

// Widest 返回各行的最大宽度。
func Widest(lines []Line) float64 {
	w := 0.0
	for _, l := range lines {
		w = math.Max(w, l.Width)
	}
	return w
}
