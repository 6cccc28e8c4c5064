package main

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/yymm/internal/app/run"
	"github.com/John-Robertt/yymm/internal/config"
	"github.com/John-Robertt/yymm/internal/domain"
)

var _ run.Observer = (*logObserver)(nil)

// newLogger 所有日志写到 w（stderr），不污染 stdout 的 JSON 输出契约。
func newLogger(w io.Writer, jsonLogs, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := w
	if !jsonLogs {
		out = zerolog.ConsoleWriter{Out: w, NoColor: !isTTY(w), TimeFormat: "15:04:05"}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// logObserver 把 run 的事件翻译成结构化日志。
type logObserver struct {
	log zerolog.Logger
}

func newLogObserver(l zerolog.Logger) *logObserver {
	return &logObserver{log: l}
}

func (o *logObserver) OnStart(eff config.EffectiveConfig) {
	o.log.Info().
		Str("directory", eff.Source).
		Str("target", eff.Target).
		Str("keep_policy", eff.Policy.String()).
		Bool("dry_run", eff.DryRun).
		Msg("开始处理")
}

func (o *logObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	ev := o.log.Debug()
	if name == "walk" {
		ev = o.log.Info()
	}
	ev.Str("phase", name).Fields(fields).Dur("took", dur).Msg("阶段完成")
}

func (o *logObserver) OnItemDone(res domain.ItemResult) {
	switch res.Status {
	case domain.StatusPlanned:
		o.log.Info().Str("src", res.Src).Str("dst", res.Dst).Str("taken_from", res.TakenFrom).Msg("计划移动")
	case domain.StatusMoved:
		o.log.Debug().Str("src", res.Src).Str("dst", res.Dst).Str("taken_from", res.TakenFrom).Msg("已移动")
	case domain.StatusDiscarded:
		o.log.Info().Str("src", res.Src).Str("kept", res.KeptInstead).Msg("重复文件，跳过")
	case domain.StatusFailed:
		if res.ErrorCode == domain.ErrCodeInvalidSource {
			o.log.Error().Str("code", res.ErrorCode).Msg(res.ErrorMsg)
			return
		}
		ev := o.log.Warn().Str("src", res.Src).Str("code", res.ErrorCode)
		if len(res.Sidecars) > 0 {
			ev = ev.Strs("sidecars", res.Sidecars)
		}
		ev.Msg(res.ErrorMsg)
	}
}
