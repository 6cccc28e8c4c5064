package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/yymm/internal/domain"
	"github.com/John-Robertt/yymm/internal/naming"
	"github.com/John-Robertt/yymm/internal/scan"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingTarget 表示 CLI 与配置文件都没有给出 target。
	ErrCodeMissingTarget = "config_missing_target"
)

// FileName 是源目录下可选配置文件的固定文件名。
const FileName = "yymm.json"

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --edited=false 必须能覆盖 config.keep_edited=true。
type CLIArgs struct {
	Source string
	Target string

	KeepEdited    bool
	KeepEditedSet bool

	DryRun    bool
	DryRunSet bool

	// ConfigPath 非空时必须存在；为空时读取 <source>/yymm.json（可选）。
	ConfigPath string
}

// FileConfig 对应 yymm.json 的解析结构。
type FileConfig struct {
	Target           string   `json:"target"`
	KeepEdited       *bool    `json:"keep_edited"`
	DryRun           *bool    `json:"dry_run"`
	ExcludeDirs      []string `json:"exclude_dirs"`
	Extensions       []string `json:"extensions"`
	SidecarStemLimit int      `json:"sidecar_stem_limit"`
	HEIC             *bool    `json:"heic"`
	MaxImageBytes    int64    `json:"max_image_bytes"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Source string
	Target string

	Policy domain.KeepPolicy
	DryRun bool

	ExcludeDirs []string
	Extensions  []string

	// StemLimit 是 sidecar stem 的字符上限（模拟导出工具的截断行为）。
	StemLimit int

	HEIC          bool
	MaxImageBytes int64

	// ConfigFile 是实际读取到的配置文件；未读取时为空。
	ConfigFile string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingTarget:
		return fmt.Sprintf("%s：未指定 target（命令行参数或配置文件 %q 的 target 字段）", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则（固定）：
// 1) CLI 提供 --config：读取该文件（必选）
// 2) 否则：尝试读取 <source>/yymm.json（可选）
//
// 覆盖优先级（固定）：
// - target：CLI > config
// - keep_edited / dry_run：CLI 显式指定 > config > 默认 false
// - 其他字段：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	source := absCleanFrom(cwdAbs, cli.Source)

	var cfgPath string
	required := false
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	} else {
		cfgPath = filepath.Join(source, FileName)
	}

	var (
		fc     FileConfig
		exists bool
	)
	// 源目录本身无效时不读默认配置：让上层报告 invalid_source_directory。
	if required || isDir(source) {
		fc, exists, err = readFileConfig(cfgPath)
	}
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if required && !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if !exists {
		cfgPath = ""
	}

	return merge(cwdAbs, source, cli, fc, cfgPath)
}

func merge(cwdAbs, source string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	// target：CLI > config；config 中的相对路径相对于配置文件所在目录。
	target := ""
	if strings.TrimSpace(cli.Target) != "" {
		target = absCleanFrom(cwdAbs, cli.Target)
	} else if strings.TrimSpace(fc.Target) != "" {
		target = absCleanFrom(filepath.Dir(cfgPath), fc.Target)
	}
	if target == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingTarget, Path: cfgPath}
	}

	keepEdited := false
	if cli.KeepEditedSet {
		keepEdited = cli.KeepEdited
	} else if fc.KeepEdited != nil {
		keepEdited = *fc.KeepEdited
	}

	dryRun := false
	if cli.DryRunSet {
		dryRun = cli.DryRun
	} else if fc.DryRun != nil {
		dryRun = *fc.DryRun
	}

	stemLimit := fc.SidecarStemLimit
	if stemLimit == 0 {
		stemLimit = naming.DefaultStemLimit
	}
	if stemLimit < 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("sidecar_stem_limit 不能为负数：%d", stemLimit)}
	}
	if fc.MaxImageBytes < 0 {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("max_image_bytes 不能为负数：%d", fc.MaxImageBytes)}
	}

	exts := scan.DefaultExtensions
	if len(fc.Extensions) > 0 {
		exts = fc.Extensions
	}

	// HEIC 默认开启：导出目录里 HEIC 很常见。
	heic := true
	if fc.HEIC != nil {
		heic = *fc.HEIC
	}

	return EffectiveConfig{
		Source:        source,
		Target:        target,
		Policy:        domain.PolicyFor(keepEdited),
		DryRun:        dryRun,
		ExcludeDirs:   append([]string(nil), fc.ExcludeDirs...),
		Extensions:    append([]string(nil), exts...),
		StemLimit:     stemLimit,
		HEIC:          heic,
		MaxImageBytes: fc.MaxImageBytes,
		ConfigFile:    cfgPath,
	}, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
