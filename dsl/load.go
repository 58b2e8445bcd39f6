package dsl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/nexal/design"
)

// LoadFile 按扩展名读取设计文件：.nexal 走 DSL 语法，.yaml/.yml 与 .json 直接解码为 design.Spec。
func LoadFile(path string) (design.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return design.Spec{}, fmt.Errorf("无法读取设计文件 %s: %w", path, err)
	}
	var spec design.Spec
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".nexal", "":
		doc, err := Parse(bytes.NewReader(data))
		if err != nil {
			return design.Spec{}, fmt.Errorf("解析设计文件 %s 失败: %w", path, err)
		}
		if spec, err = Compile(doc); err != nil {
			return design.Spec{}, fmt.Errorf("编译设计文件 %s 失败: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return design.Spec{}, fmt.Errorf("解析设计文件 %s 失败: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &spec); err != nil {
			return design.Spec{}, fmt.Errorf("解析设计文件 %s 失败: %w", path, err)
		}
	default:
		return design.Spec{}, fmt.Errorf("不支持的设计文件格式 %s", ext)
	}
	return spec, nil
}
