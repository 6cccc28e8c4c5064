package resolve

import (
	"errors"
	"testing"
	"time"
)

func TestParseSidecar_PhotoTakenTimeFirst(t *testing.T) {
	b := []byte(`{
  "title": "IMG_0001.jpg",
  "creationTime": {"timestamp": "1600000000", "formatted": "13 Sep 2020"},
  "photoTakenTime": {"timestamp": "1500000000", "formatted": "14 Jul 2017"}
}`)
	got, err := ParseSidecar(b)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !got.Equal(time.Unix(1500000000, 0)) {
		t.Fatalf("应优先使用 photoTakenTime：%v", got)
	}
	if got.Location() != time.Local {
		t.Fatalf("应转换为本地时间：%v", got.Location())
	}
}

func TestParseSidecar_CreationTimeFallback(t *testing.T) {
	got, err := ParseSidecar([]byte(`{"creationTime": {"timestamp": "1600000000"}}`))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !got.Equal(time.Unix(1600000000, 0)) {
		t.Fatalf("creationTime 回退不正确：%v", got)
	}
}

func TestParseSidecar_NumberTimestamp(t *testing.T) {
	got, err := ParseSidecar([]byte(`{"photoTakenTime": {"timestamp": 1500000000}}`))
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got.Unix() != 1500000000 {
		t.Fatalf("数字时间戳解析不正确：%v", got)
	}
}

func TestParseSidecar_Errors(t *testing.T) {
	cases := map[string]string{
		"no keys":      `{"title": "x"}`,
		"not json":     `not json`,
		"truncated":    `{"photoTakenTime": {"timestamp": "1"`,
		"array":        `[1, 2]`,
		"bad number":   `{"photoTakenTime": {"timestamp": "soon"}}`,
		"object value": `{"photoTakenTime": {"timestamp": {}}}`,
		"trailing":     `{"photoTakenTime": {"timestamp": "1500000000"}} trailing garbage`,
		"junk inside":  `{"photoTakenTime": {"timestamp": "1500000000"}, oops}`,
		"extra commas": `{"photoTakenTime": {"timestamp": "1500000000"},,,}`,
	}
	for name, in := range cases {
		if _, err := ParseSidecar([]byte(in)); err == nil {
			t.Fatalf("%s：期望错误，但得到 nil", name)
		}
	}

	if _, err := ParseSidecar([]byte(`{"photoTakenTime": {"timestamp": "1500000000"}} x`)); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("语法错误的文档应返回 ErrInvalidJSON，实际：%v", err)
	}
	if _, err := ParseSidecar([]byte(`{"title": "x"}`)); !errors.Is(err, ErrNoTimestampKey) {
		t.Fatalf("缺少时间字段应返回 ErrNoTimestampKey，实际：%v", err)
	}
}
