package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusMoved     = "moved"
	StatusPlanned   = "planned"
	StatusDiscarded = "discarded"
	StatusFailed    = "failed"
)

const (
	ErrCodeInvalidSource    = "invalid_source_directory"
	ErrCodeMetadataNotFound = "metadata_not_found"
	ErrCodeTargetConflict   = "target_conflict"
	ErrCodeIOFailed         = "io_failed"
	ErrCodeMoveFailed       = "move_failed"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	DryRun     bool   `json:"dry_run"`
	KeepPolicy string `json:"keep_policy"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []ItemResult  `json:"items"`
}

type ReportSummary struct {
	Moved     int `json:"moved"`
	Planned   int `json:"planned"`
	Discarded int `json:"discarded"`
	Failed    int `json:"failed"`
}

// ItemResult 对应一个输入文件（或一个合成的运行级错误，此时 Src 为空）。
type ItemResult struct {
	Src    string `json:"src"`
	Dst    string `json:"dst"`
	Status string `json:"status"`

	TakenAt     string `json:"taken_at"`
	TakenFrom   string `json:"taken_from"`
	Sidecar     string `json:"sidecar"`
	KeptInstead string `json:"kept_instead"`

	ErrorCode string   `json:"error_code"`
	ErrorMsg  string   `json:"error_msg"`
	Sidecars  []string `json:"sidecars"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 src 字典序；src=="" 的条目排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Src
		b := r.Items[j].Src
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusMoved:
			s.Moved++
		case StatusPlanned:
			s.Planned++
		case StatusDiscarded:
			s.Discarded++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
