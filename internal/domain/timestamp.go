package domain

import "time"

const (
	SourceEmbedded = "embedded"
	SourceSidecar  = "sidecar"
)

// Timestamp 是解析得到的拍摄时间；目标布局只使用 Year/Month。
type Timestamp struct {
	Time    time.Time
	Source  string // SourceEmbedded | SourceSidecar
	Sidecar string // 仅 Source==SourceSidecar 时非空
}
