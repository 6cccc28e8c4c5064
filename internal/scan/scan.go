package scan

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/John-Robertt/yymm/internal/domain"
)

// DefaultExtensions 是可识别的图片扩展名（小写）。
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tiff", ".heic"}

// ExtSet 把扩展名列表规范化为小写集合（容忍缺少前导 '.'）。
func ExtSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	return set
}

// ListDir 列出 dir 的直接子项：图片文件与子目录（都按名称排序）。
//
// - root 用于计算 RelPath
// - 扩展名匹配大小写不敏感
// - 被 ex 排除的子目录不会返回
//
// 注意：只做 ReadDir（stat），不读文件内容。
func ListDir(fs afero.Fs, root, dir string, exts map[string]struct{}, ex *Excluder) (images []domain.ImageFile, subdirs []string, err error) {
	entries, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, nil, err
	}

	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if ex != nil && ex.Excluded(path) {
				continue
			}
			subdirs = append(subdirs, path)
			continue
		}
		if !e.Mode().IsRegular() {
			continue
		}
		if _, ok := exts[strings.ToLower(filepath.Ext(e.Name()))]; !ok {
			continue
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil, nil, err
		}
		images = append(images, domain.NewImageFile(path, rel))
	}

	// afero.ReadDir 已按名称排序；这里再显式排序，避免依赖具体 Fs 实现。
	sort.Slice(images, func(i, j int) bool { return images[i].Name < images[j].Name })
	sort.Strings(subdirs)
	return images, subdirs, nil
}

// Excluder 判断某个目录是否应跳过（例如位于源目录内部的目标目录）。
type Excluder struct {
	excluded []string
}

// NewExcluder 构造排除列表。
//
// - target：目标根目录；仅当它严格位于 root 之内时排除（避免把刚移动的文件再扫描一遍）
// - excludeDirs：来自配置文件；相对路径视为相对 root
func NewExcluder(root, target string, excludeDirs []string) *Excluder {
	root = filepath.Clean(root)
	excluded := make([]string, 0, 1+len(excludeDirs))
	if strings.TrimSpace(target) != "" {
		target = filepath.Clean(target)
		if target != root && isUnder(target, root) {
			excluded = append(excluded, target)
		}
	}

	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if filepath.IsAbs(x) {
			excluded = append(excluded, filepath.Clean(x))
			continue
		}
		// x 是相对路径：相对 root。
		excluded = append(excluded, filepath.Clean(filepath.Join(root, x)))
	}

	// 排除列表排序后，Excluded 的行为更可预测（且便于测试）。
	sort.Strings(excluded)
	return &Excluder{excluded: excluded}
}

func (e *Excluder) Excluded(path string) bool {
	path = filepath.Clean(path)
	for _, base := range e.excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(path, base+sep)
}
