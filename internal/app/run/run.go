package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/John-Robertt/yymm/internal/app"
	"github.com/John-Robertt/yymm/internal/app/planner"
	"github.com/John-Robertt/yymm/internal/config"
	"github.com/John-Robertt/yymm/internal/domain"
	"github.com/John-Robertt/yymm/internal/infra/exifx"
	"github.com/John-Robertt/yymm/internal/infra/fsx"
	"github.com/John-Robertt/yymm/internal/naming"
	"github.com/John-Robertt/yymm/internal/resolve"
	"github.com/John-Robertt/yymm/internal/scan"
)

// Deps 是 run 依赖的外部协作者；零值字段使用默认实现（真实磁盘 + EXIF 解码）。
type Deps struct {
	Fs      afero.Fs
	Decoder resolve.EmbeddedDecoder
}

// InvalidSourceError 表示源路径不存在或不是目录；run 在任何处理之前中止。
type InvalidSourceError struct {
	Path string
	Err  error
}

func (e *InvalidSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("源目录无效：%q：%v", e.Path, e.Err)
	}
	return fmt.Sprintf("源路径不是目录：%q", e.Path)
}

func (e *InvalidSourceError) Unwrap() error { return e.Err }

// ValidateSource 检查源路径存在且是目录。
func ValidateSource(fs afero.Fs, path string) error {
	fi, err := fs.Stat(path)
	if err != nil {
		return &InvalidSourceError{Path: path, Err: err}
	}
	if !fi.IsDir() {
		return &InvalidSourceError{Path: path}
	}
	return nil
}

// IsInvalidSource 判断 err 是否为 InvalidSourceError。
func IsInvalidSource(err error) bool {
	var e *InvalidSourceError
	return errors.As(err, &e)
}

// Execute 执行一次 run（dry-run/真实移动），并返回对外稳定的 RunReport。
// 该函数尽量把错误“降级”为文件级失败（单个文件失败不影响其他文件）。
func Execute(ctx context.Context, eff config.EffectiveConfig, deps Deps) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, deps, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, deps Deps, obs Observer) domain.RunReport {
	started := time.Now().UTC()

	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Source:     eff.Source,
		Target:     eff.Target,
		DryRun:     eff.DryRun,
		KeepPolicy: eff.Policy.String(),
		StartedAt:  started,
		Items:      make([]domain.ItemResult, 0, 128),
	}

	fs := deps.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	dec := deps.Decoder
	if dec == nil {
		dec = exifx.New(fs, exifx.Options{HEIC: eff.HEIC, MaxImageBytes: eff.MaxImageBytes})
	}

	if err := ValidateSource(fs, eff.Source); err != nil {
		it := syntheticFailed(domain.ErrCodeInvalidSource, err.Error())
		rr.Items = append(rr.Items, it)
		if obs != nil {
			obs.OnItemDone(it)
		}
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	o := &organizer{
		eff:      eff,
		fs:       fs,
		resolver: resolve.New(fs, dec, naming.Rules{StemLimit: eff.StemLimit}),
		exts:     scan.ExtSet(eff.Extensions),
		excluder: scan.NewExcluder(eff.Source, eff.Target, eff.ExcludeDirs),
		reserved: planner.Reserved{},
		obs:      obs,
		rr:       &rr,
	}

	walkStarted := time.Now()
	if err := o.visit(ctx, eff.Source); err != nil {
		o.add(syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("遍历中止：%v", err)))
	}
	if obs != nil {
		obs.OnPhaseDone("walk", map[string]any{
			"dirs":   o.dirs,
			"images": o.images,
		}, time.Since(walkStarted))
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

type organizer struct {
	eff      config.EffectiveConfig
	fs       afero.Fs
	resolver *resolve.Resolver
	exts     map[string]struct{}
	excluder *scan.Excluder
	reserved planner.Reserved
	obs      Observer
	rr       *domain.RunReport

	dirs   int
	images int
}

// visit 深度优先：先递归子目录，再处理本目录的图片。
// 每个目录的去重互相独立；不同目录的同名文件永远不会被视为重复。
func (o *organizer) visit(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dirStarted := time.Now()
	images, subdirs, err := scan.ListDir(o.fs, o.eff.Source, dir, o.exts, o.excluder)
	if err != nil {
		// 单个目录读不了：报告后继续处理其他目录。
		it := syntheticFailed(domain.ErrCodeIOFailed, fmt.Sprintf("读取目录失败：%v", err))
		it.Src = o.relSrc(dir)
		o.add(it)
		return nil
	}

	for _, sub := range subdirs {
		if err := o.visit(ctx, sub); err != nil {
			return err
		}
	}

	kept, discarded := o.processDir(images)

	o.dirs++
	o.images += len(images)
	if o.obs != nil {
		o.obs.OnPhaseDone("dir", map[string]any{
			"dir":       o.relSrc(dir),
			"images":    len(images),
			"kept":      kept,
			"discarded": discarded,
		}, time.Since(dirStarted))
	}
	return nil
}

func (o *organizer) processDir(images []domain.ImageFile) (int, int) {
	kept, discarded := app.Dedupe(images, o.eff.Policy)

	for _, d := range discarded {
		o.add(domain.ItemResult{
			Src:         d.File.RelPath,
			Status:      domain.StatusDiscarded,
			KeptInstead: d.Winner.RelPath,
			Sidecars:    []string{},
		})
	}

	// 先为所有保留文件确定拍摄时间，再逐个移动。
	type resolved struct {
		file domain.ImageFile
		ts   domain.Timestamp
	}
	ready := make([]resolved, 0, len(kept))
	for _, f := range kept {
		ts, err := o.resolver.Resolve(f.AbsPath)
		if err != nil {
			o.add(o.metadataFailed(f, err))
			continue
		}
		ready = append(ready, resolved{file: f, ts: ts})
	}

	for _, r := range ready {
		o.add(o.moveOne(r.file, r.ts))
	}
	return len(kept), len(discarded)
}

// moveOne 在移动前一刻分配目标名，保证“目标已存在”按移动时的磁盘状态判断。
func (o *organizer) moveOne(f domain.ImageFile, ts domain.Timestamp) domain.ItemResult {
	p := planner.PlanMove(o.fs, o.eff.Target, f, ts, o.reserved)

	item := domain.ItemResult{
		Src:       f.RelPath,
		Dst:       o.relDst(p.DstAbs),
		Status:    domain.StatusPlanned,
		TakenAt:   ts.Time.Format(time.RFC3339),
		TakenFrom: ts.Source,
		Sidecar:   o.relSrc(ts.Sidecar),
		Sidecars:  []string{},
	}
	if o.eff.DryRun {
		return item
	}

	if err := fsx.EnsureDir(o.fs, filepath.Dir(p.DstAbs)); err != nil {
		return failMove(item, err)
	}
	if err := fsx.Move(o.fs, p.SrcAbs, p.DstAbs); err != nil {
		return failMove(item, err)
	}
	item.Status = domain.StatusMoved
	return item
}

func failMove(item domain.ItemResult, err error) domain.ItemResult {
	item.Status = domain.StatusFailed
	if fsx.IsPathTypeConflict(err) {
		item.ErrorCode = domain.ErrCodeTargetConflict
	} else {
		item.ErrorCode = domain.ErrCodeMoveFailed
	}
	item.ErrorMsg = err.Error()
	return item
}

func (o *organizer) metadataFailed(f domain.ImageFile, err error) domain.ItemResult {
	item := domain.ItemResult{
		Src:       f.RelPath,
		Status:    domain.StatusFailed,
		ErrorCode: domain.ErrCodeMetadataNotFound,
		ErrorMsg:  err.Error(),
		Sidecars:  []string{},
	}
	var me *resolve.MetadataNotFoundError
	if errors.As(err, &me) {
		for _, sc := range me.Sidecars {
			item.Sidecars = append(item.Sidecars, o.relSrc(sc))
		}
	} else {
		item.ErrorCode = domain.ErrCodeIOFailed
	}
	return item
}

func (o *organizer) add(it domain.ItemResult) {
	o.rr.Items = append(o.rr.Items, it)
	if o.obs != nil {
		o.obs.OnItemDone(it)
	}
}

func (o *organizer) relSrc(p string) string {
	if p == "" {
		return ""
	}
	if rel, err := filepath.Rel(o.eff.Source, p); err == nil {
		return rel
	}
	return p
}

func (o *organizer) relDst(p string) string {
	if rel, err := filepath.Rel(o.eff.Target, p); err == nil {
		return rel
	}
	return p
}

func syntheticFailed(code, msg string) domain.ItemResult {
	return domain.ItemResult{
		Src:       "",
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
		Sidecars:  []string{},
	}
}
