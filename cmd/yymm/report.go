package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/John-Robertt/yymm/internal/domain"
)

// emitReport 输出最终结果。
//
// stdout 是 TTY：只打印一行摘要，失败明细走 stderr。
// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（摘要走 stderr）。
func emitReport(stdout, stderr io.Writer, rr domain.RunReport) {
	if isTTY(stdout) {
		fmt.Fprintln(stdout, summaryLine(rr))
		for _, it := range rr.Items {
			if it.Status != domain.StatusFailed {
				continue
			}
			key := it.Src
			if key == "" {
				key = "<run>"
			}
			fmt.Fprintf(stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
		}
		return
	}

	enc := json.NewEncoder(stdout)
	_ = enc.Encode(rr)
	fmt.Fprintln(stderr, summaryLine(rr))
}

func summaryLine(rr domain.RunReport) string {
	return fmt.Sprintf("完成：moved=%d planned=%d discarded=%d failed=%d",
		rr.Summary.Moved, rr.Summary.Planned, rr.Summary.Discarded, rr.Summary.Failed,
	)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
