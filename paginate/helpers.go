package paginate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ByLCY/nexal/layout"
)

// BaseID 去掉拆分片段的 @partN 后缀。
func BaseID(id string) string {
	if i := strings.LastIndex(id, partSep); i >= 0 {
		return id[:i]
	}
	return id
}

// LeafIDs 按页序返回树中所有叶子的 id（片段保留后缀）。
func LeafIDs(tree *layout.Tree) []string {
	if tree == nil {
		return nil
	}
	var ids []string
	for _, p := range tree.Pages {
		for _, leaf := range layout.Leaves(p) {
			ids = append(ids, leaf.ID)
		}
	}
	return ids
}

// Signature 是页面的稳定摘要：对每个节点的 id|type|取整后的 frame 排序后做 sha256。
func Signature(page *layout.Node) string {
	var lines []string
	layout.Walk(page, func(n *layout.Node) bool {
		f := n.Frame
		lines = append(lines, fmt.Sprintf("%s|%s|%s,%s,%s,%s",
			n.ID, n.Type, round(f.X), round(f.Y), round(f.Width), round(f.Height)))
		return true
	})
	sort.Strings(lines)
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

func round(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // 去掉 -0
	}
	return fmt.Sprintf("%.2f", r)
}
