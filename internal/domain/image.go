package domain

import (
	"path/filepath"
	"strings"
)

// ImageFile 描述一次扫描得到的图片文件（只做 stat，不读内容）。
//
// 不变量（实现必须遵守）：
// - AbsPath 必须是 clean 路径
// - Ext 已转小写，且属于可识别的图片扩展名集合
type ImageFile struct {
	AbsPath string
	RelPath string
	Dir     string
	Name    string // 含扩展名（保留原始大小写）
	Stem    string // filename without ext
	Ext     string // ".jpg"
}

// NewImageFile 从路径构造 ImageFile；rel 由调用方计算（扫描根目录相关）。
func NewImageFile(abs, rel string) ImageFile {
	abs = filepath.Clean(abs)
	name := filepath.Base(abs)
	ext := filepath.Ext(name)
	return ImageFile{
		AbsPath: abs,
		RelPath: rel,
		Dir:     filepath.Dir(abs),
		Name:    name,
		Stem:    strings.TrimSuffix(name, ext),
		Ext:     strings.ToLower(ext),
	}
}

// KeepPolicy 决定同一张逻辑照片的多个变体中保留哪一个。
type KeepPolicy int

const (
	// PreferOriginal 保留原图（CLI 默认）。
	PreferOriginal KeepPolicy = iota
	// PreferEdited 保留 "-edited" 变体。
	PreferEdited
)

func (p KeepPolicy) String() string {
	switch p {
	case PreferEdited:
		return "prefer_edited"
	default:
		return "prefer_original"
	}
}

// PolicyFor 把 CLI 的 --edited 布尔值映射为 KeepPolicy。
func PolicyFor(keepEdited bool) KeepPolicy {
	if keepEdited {
		return PreferEdited
	}
	return PreferOriginal
}
