// Package content 定义简历内容模型，并从 JSON/YAML 文件加载。
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat 表示无法识别内容文件的扩展名。
var ErrUnsupportedFormat = errors.New("content: 不支持的文件格式")

// Model 是一份简历的全部内容。所有字段可选。
type Model struct {
	Identity    *Identity    `json:"identity,omitempty" yaml:"identity"`
	Summary     string       `json:"summary,omitempty" yaml:"summary"`
	Experiences []Experience `json:"experiences,omitempty" yaml:"experiences"`
	Education   []Education  `json:"education,omitempty" yaml:"education"`
	Skills      []Skill      `json:"skills,omitempty" yaml:"skills"`
	Languages   []Language   `json:"languages,omitempty" yaml:"languages"`
}

// Identity 是姓名与联系方式。
type Identity struct {
	FirstName string `json:"firstName,omitempty" yaml:"first_name"`
	LastName  string `json:"lastName,omitempty" yaml:"last_name"`
	Headline  string `json:"headline,omitempty" yaml:"headline"`
	Email     string `json:"email,omitempty" yaml:"email"`
	Phone     string `json:"phone,omitempty" yaml:"phone"`
	Location  string `json:"location,omitempty" yaml:"location"`
	Website   string `json:"website,omitempty" yaml:"website"`
	PhotoURL  string `json:"photoUrl,omitempty" yaml:"photo_url"`
}

// Fields 以 map 形式暴露身份字段，供姓名模板插值。
func (i *Identity) Fields() map[string]any {
	if i == nil {
		return map[string]any{}
	}
	return map[string]any{
		"firstName": i.FirstName,
		"lastName":  i.LastName,
		"headline":  i.Headline,
		"email":     i.Email,
		"phone":     i.Phone,
		"location":  i.Location,
		"website":   i.Website,
	}
}

// Contacts 返回非空的联系方式，顺序固定。
func (i *Identity) Contacts() []string {
	if i == nil {
		return nil
	}
	var out []string
	for _, v := range []string{i.Email, i.Phone, i.Location, i.Website} {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Experience 是一段工作经历。Tasks 可以包含 Markdown 或 HTML 片段。
type Experience struct {
	Role        string   `json:"role,omitempty" yaml:"role"`
	Company     string   `json:"company,omitempty" yaml:"company"`
	Location    string   `json:"location,omitempty" yaml:"location"`
	StartDate   string   `json:"startDate,omitempty" yaml:"start_date"`
	EndDate     string   `json:"endDate,omitempty" yaml:"end_date"`
	DateRange   string   `json:"dateRange,omitempty" yaml:"date_range"`
	DisplayDate string   `json:"displayDate,omitempty" yaml:"display_date"`
	Tasks       []string `json:"tasks,omitempty" yaml:"tasks"`
}

// Dates 返回展示用日期串。
func (e Experience) Dates() string {
	return FormatDates(e.DateRange, e.DisplayDate, e.StartDate, e.EndDate)
}

// Education 是一段教育经历。
type Education struct {
	Degree      string `json:"degree,omitempty" yaml:"degree"`
	School      string `json:"school,omitempty" yaml:"school"`
	StartDate   string `json:"startDate,omitempty" yaml:"start_date"`
	EndDate     string `json:"endDate,omitempty" yaml:"end_date"`
	DateRange   string `json:"dateRange,omitempty" yaml:"date_range"`
	DisplayDate string `json:"displayDate,omitempty" yaml:"display_date"`
	Details     string `json:"details,omitempty" yaml:"details"`
}

// Dates 返回展示用日期串。
func (e Education) Dates() string {
	return FormatDates(e.DateRange, e.DisplayDate, e.StartDate, e.EndDate)
}

// Skill 是一项技能，Level 可为空。
type Skill struct {
	Name  string `json:"name" yaml:"name"`
	Level string `json:"level,omitempty" yaml:"level"`
}

// Language 是一门语言，Level 可为空。
type Language struct {
	Name  string `json:"name" yaml:"name"`
	Level string `json:"level,omitempty" yaml:"level"`
}

// PresentLabel 用于只有开始日期的区间。
const PresentLabel = "Present"

// FormatDates 依次尝试：字面区间 → 展示串 → "start - end" → "start - Present"；缺少开始日期时为空。
func FormatDates(dateRange, display, start, end string) string {
	if s := strings.TrimSpace(dateRange); s != "" {
		return s
	}
	if s := strings.TrimSpace(display); s != "" {
		return s
	}
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return start + " - " + PresentLabel
	default:
		return ""
	}
}

// Load 按扩展名读取 .json 或 .yaml/.yml 内容文件。
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取内容文件失败: %w", err)
	}
	return Decode(data, filepath.Ext(path))
}

// Decode 按格式（".json"、".yaml"、".yml"）解码内容。
func Decode(data []byte, ext string) (*Model, error) {
	var m Model
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("解析 JSON 内容失败: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("解析 YAML 内容失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return &m, nil
}
