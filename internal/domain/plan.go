package domain

// MovePlan 规划一次文件移动（只描述 src/dst；dry-run 时不会真正执行）。
type MovePlan struct {
	SrcAbs string
	DstAbs string
	Taken  Timestamp
}
