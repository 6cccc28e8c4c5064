package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestRunReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := RunReport{
		Source:     "/abs/src",
		Target:     "/abs/dst",
		DryRun:     true,
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ItemResult{
			{Src: "b.jpg", Status: StatusPlanned},
			{Src: "", Status: StatusFailed}, // 运行级合成项
			{Src: "a.jpg", Status: StatusMoved},
			{Src: "a-edited.jpg", Status: StatusDiscarded},
			{Src: "c.jpg", Status: StatusFailed},
		},
	}

	r.Finalize()

	got := []string{r.Items[0].Src, r.Items[1].Src, r.Items[2].Src, r.Items[3].Src, r.Items[4].Src}
	want := []string{"a-edited.jpg", "a.jpg", "b.jpg", "c.jpg", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("items 排序不符合契约：got=%v want=%v", got, want)
		}
	}
	if r.Summary.Moved != 1 || r.Summary.Planned != 1 || r.Summary.Discarded != 1 || r.Summary.Failed != 2 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	// time.Time 在 UTC 下应输出 'Z' 后缀。
	if !bytes.Contains(b, []byte("\"started_at\":\"2026-02-09T02:00:00Z\"")) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestNewImageFile_SplitsNameAndLowersExt(t *testing.T) {
	f := NewImageFile("/p/in/IMG_01-edited.JPG", "in/IMG_01-edited.JPG")
	if f.Name != "IMG_01-edited.JPG" || f.Stem != "IMG_01-edited" || f.Ext != ".jpg" || f.Dir != "/p/in" {
		t.Fatalf("拆分结果不符合预期：%+v", f)
	}
}

func TestPolicyFor(t *testing.T) {
	if PolicyFor(true) != PreferEdited || PolicyFor(false) != PreferOriginal {
		t.Fatalf("PolicyFor 映射错误")
	}
}
