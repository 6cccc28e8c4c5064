package run

import (
	"time"

	"github.com/John-Robertt/yymm/internal/config"
	"github.com/John-Robertt/yymm/internal/domain"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(eff config.EffectiveConfig)
	// OnPhaseDone 在阶段结束时调用："dir"（每个目录处理完）与 "walk"（整棵树处理完）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在每个文件得出结果时调用（moved/planned/discarded/failed）。
	OnItemDone(res domain.ItemResult)
}
