package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EditedMarker 是导出工具给本地编辑过的照片追加到 stem 里的标记。
const EditedMarker = "-edited"

// DefaultStemLimit 是导出工具对 sidecar stem 的字符数上限（按字符计，不是字节）。
// 该值来自对外部工具输出的观察；工具行为变化时只需改这里或配置。
const DefaultStemLimit = 46

const (
	sidecarLiteral = ".supplemental-metadata"
	sidecarExt     = ".json"
	maxNumbered    = 99
)

// Mode 是 sidecar 命名约定。
type Mode int

const (
	// SuffixPreserving：图片扩展名保留在 sidecar stem 中（photo.jpg.supplemental-metadata.json）。
	SuffixPreserving Mode = iota
	// SuffixDropping：去掉图片扩展名（photo.supplemental-metadata.json）。
	SuffixDropping
)

func (m Mode) String() string {
	if m == SuffixDropping {
		return "suffix_dropping"
	}
	return "suffix_preserving"
}

// Rules 承载可调的命名规则参数。
type Rules struct {
	// StemLimit <= 0 时使用 DefaultStemLimit。
	StemLimit int
}

// Default 返回与导出工具当前行为一致的规则。
func Default() Rules {
	return Rules{StemLimit: DefaultStemLimit}
}

// IsEdited 判断文件 stem 是否包含编辑标记。
func IsEdited(path string) bool {
	return strings.Contains(stemOf(path), EditedMarker)
}

// BasePath 去掉 stem 中第一处编辑标记，返回（未编辑路径, 是否为编辑版）。
// 只删除第一处；stem 中出现多处标记时，其余保持原样。
func BasePath(path string) (string, bool) {
	stem := stemOf(path)
	if !strings.Contains(stem, EditedMarker) {
		return path, false
	}
	return withStem(path, strings.Replace(stem, EditedMarker, "", 1)), true
}

// SidecarPath 按给定约定推导图片对应的 sidecar JSON 路径。
//
// 规则（固定顺序）：
// 1) 先去掉编辑标记
// 2) 从 (1) 到 (99) 扫描编号后缀，首个命中者记为 numbered 并从 stem 中移除（所有出现处）
// 3) 拼出候选 stem：<stem>[<ext>].supplemental-metadata<numbered>
// 4) 截断到 StemLimit 个字符；截断发生在拼接之后，因此可能切掉编号或字面量
// 5) 目录不变，扩展名固定为 .json
func (r Rules) SidecarPath(path string, mode Mode) string {
	base, _ := BasePath(path)
	stem := stemOf(base)
	ext := filepath.Ext(base)

	numbered := ""
	for i := 1; i <= maxNumbered; i++ {
		suffix := fmt.Sprintf("(%d)", i)
		if strings.Contains(stem, suffix) {
			numbered = suffix
			stem = strings.ReplaceAll(stem, suffix, "")
			break
		}
	}

	var cand string
	switch mode {
	case SuffixDropping:
		cand = stem + sidecarLiteral + numbered
	default:
		cand = stem + ext + sidecarLiteral + numbered
	}

	cand = truncateRunes(cand, r.limit())
	return filepath.Join(filepath.Dir(path), cand+sidecarExt)
}

// SidecarPaths 返回两种约定下的候选路径（固定顺序：先保留后缀，再去掉后缀）。
// 两者相同时只返回一个。
func (r Rules) SidecarPaths(path string) []string {
	a := r.SidecarPath(path, SuffixPreserving)
	b := r.SidecarPath(path, SuffixDropping)
	if a == b {
		return []string{a}
	}
	return []string{a, b}
}

// SidecarPath 使用默认规则。
func SidecarPath(path string, mode Mode) string {
	return Default().SidecarPath(path, mode)
}

func (r Rules) limit() int {
	if r.StemLimit <= 0 {
		return DefaultStemLimit
	}
	return r.StemLimit
}

func stemOf(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func withStem(path, stem string) string {
	name := filepath.Base(path)
	dir := filepath.Dir(path)
	return filepath.Join(dir, stem+filepath.Ext(name))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}
