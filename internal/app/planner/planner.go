package planner

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/John-Robertt/yymm/internal/domain"
	"github.com/John-Robertt/yymm/internal/infra/fsx"
)

// DestDir 返回 <root>/YYYY/MM。
func DestDir(root string, t time.Time) string {
	return filepath.Join(root, fmt.Sprintf("%04d", t.Year()), fmt.Sprintf("%02d", int(t.Month())))
}

// Reserved 记录本次 run 已分配出去的目标路径（dry-run 不落盘，只能靠它避免重名）。
type Reserved map[string]struct{}

// PlanMove 为一个已确定拍摄时间的文件生成确定性的移动计划（不做任何写入/移动）。
// 分配到的目标路径会写入 reserved。
func PlanMove(fs afero.Fs, root string, f domain.ImageFile, ts domain.Timestamp, reserved Reserved) domain.MovePlan {
	dir := DestDir(root, ts.Time)
	name := AllocName(fs, dir, f.Name, reserved) // 保留原文件名（含扩展名大小写）
	dst := filepath.Join(dir, name)
	reserved[dst] = struct{}{}
	return domain.MovePlan{SrcAbs: f.AbsPath, DstAbs: dst, Taken: ts}
}

// AllocName 返回 dir 下第一个可用的文件名：name、<stem>_1<ext>、<stem>_2<ext>……
// “可用”意味着磁盘上不存在，且不在 reserved 中。
func AllocName(fs afero.Fs, dir, name string, reserved Reserved) string {
	if free(fs, dir, name, reserved) {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for n := 1; ; n++ {
		cand := fmt.Sprintf("%s_%d%s", base, n, ext)
		if free(fs, dir, cand, reserved) {
			return cand
		}
	}
}

func free(fs afero.Fs, dir, name string, reserved Reserved) bool {
	p := filepath.Join(dir, name)
	if _, ok := reserved[p]; ok {
		return false
	}
	return !fsx.Exists(fs, p)
}
