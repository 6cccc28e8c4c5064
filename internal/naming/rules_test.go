package naming

import (
	"path/filepath"
	"testing"
)

func TestIsEdited(t *testing.T) {
	cases := map[string]bool{
		"photo-edited.jpg":          true,
		"image-edited(1).png":       true,
		"photo.jpg":                 false,
		"dir-edited/photo.jpg":      false, // 只看 stem，不看目录
		"photo.jpg-edited":          false, // 扩展名部分不算 stem
		"IMG_1-edited-edited.jpeg":  true,
		filepath.Join("a", "b.png"): false,
	}
	for in, want := range cases {
		if got := IsEdited(in); got != want {
			t.Fatalf("IsEdited(%q)=%v，期望 %v", in, got, want)
		}
	}
}

func TestBasePath(t *testing.T) {
	p, edited := BasePath(filepath.Join("in", "photo-edited.jpg"))
	if !edited || p != filepath.Join("in", "photo.jpg") {
		t.Fatalf("期望 (in/photo.jpg, true)，实际 (%q, %v)", p, edited)
	}

	p, edited = BasePath("picture.jpeg")
	if edited || p != "picture.jpeg" {
		t.Fatalf("未编辑路径应原样返回：(%q, %v)", p, edited)
	}

	// 多处标记：只删第一处（首个命中规则）。
	p, edited = BasePath("a-edited-edited.jpg")
	if !edited || p != "a-edited.jpg" {
		t.Fatalf("期望只删除第一处标记：(%q, %v)", p, edited)
	}
}

func TestBasePath_ResultNeverEdited(t *testing.T) {
	inputs := []string{
		"photo-edited.jpg",
		"image-edited(1).png",
		"picture.jpeg",
		"snapshot(5).heic",
		"IMG_20131124_115016-edited(1).jpg",
		filepath.Join("x", "y", "z-edited.tiff"),
	}
	for _, in := range inputs {
		p, _ := BasePath(in)
		if IsEdited(p) {
			t.Fatalf("BasePath(%q)=%q 仍带编辑标记", in, p)
		}
		// 对结果再次求 base 不应再变化。
		if p2, edited := BasePath(p); edited || p2 != p {
			t.Fatalf("BasePath 不幂等：%q -> %q -> %q", in, p, p2)
		}
	}
}

func TestSidecarPath_SuffixPreserving(t *testing.T) {
	cases := []struct{ in, want string }{
		{"photo-edited.jpg", "photo.jpg.supplemental-metadata.json"},
		{"image-edited(1).png", "image.png.supplemental-metadata(1).json"},
		{"picture.jpeg", "picture.jpeg.supplemental-metadata.json"},
		{"snapshot(5).heic", "snapshot.heic.supplemental-metadata(5).json"},
		{"2021-08-08T15_36_24+02_00.JPEG", "2021-08-08T15_36_24+02_00.JPEG.supplemental-me.json"},
		{"IMG_20131124_115016-edited(1).jpg", "IMG_20131124_115016.jpg.supplemental-metadata(1).json"},
	}
	for _, c := range cases {
		if got := SidecarPath(c.in, SuffixPreserving); got != c.want {
			t.Fatalf("SidecarPath(%q, preserving)=%q，期望 %q", c.in, got, c.want)
		}
	}
}

func TestSidecarPath_SuffixDropping(t *testing.T) {
	cases := []struct{ in, want string }{
		{"photo-edited.jpg", "photo.supplemental-metadata.json"},
		{"image-edited(1).png", "image.supplemental-metadata(1).json"},
		{"picture.jpeg", "picture.supplemental-metadata.json"},
		{"snapshot(5).heic", "snapshot.supplemental-metadata(5).json"},
		{"2021-08-08T15_36_24+02_00.JPEG", "2021-08-08T15_36_24+02_00.supplemental-metadat.json"},
	}
	for _, c := range cases {
		if got := SidecarPath(c.in, SuffixDropping); got != c.want {
			t.Fatalf("SidecarPath(%q, dropping)=%q，期望 %q", c.in, got, c.want)
		}
	}
}

func TestSidecarPath_KeepsDirectory(t *testing.T) {
	in := filepath.Join("takeout", "Photos from 2019", "photo-edited.jpg")
	want := filepath.Join("takeout", "Photos from 2019", "photo.jpg.supplemental-metadata.json")
	if got := SidecarPath(in, SuffixPreserving); got != want {
		t.Fatalf("期望 %q，实际 %q", want, got)
	}
}

func TestSidecarPath_TruncatesByRunes(t *testing.T) {
	// 每个汉字是 3 字节；按字节截断会得到非法 UTF-8，按字符截断则正好 46 个字符。
	in := "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十.jpg"
	got := filepath.Base(SidecarPath(in, SuffixPreserving))
	stem := got[:len(got)-len(".json")]
	if n := len([]rune(stem)); n != DefaultStemLimit {
		t.Fatalf("期望 stem 为 %d 个字符，实际 %d（%q）", DefaultStemLimit, n, stem)
	}
}

func TestSidecarPath_NumberedLowestFirst(t *testing.T) {
	// (1) 先于 (2) 被扫描到，即便 (2) 在前面。
	got := SidecarPath("a(2)b(1).jpg", SuffixDropping)
	if got != "a(2)b.supplemental-metadata(1).json" {
		t.Fatalf("编号扫描顺序不符合预期：%q", got)
	}
}

func TestSidecarPath_NumberedRemovedEverywhere(t *testing.T) {
	// 命中的编号在 stem 中的每一处都被移除，只在字面量之后出现一次。
	if got := SidecarPath("a(1)b(1).jpg", SuffixPreserving); got != "ab.jpg.supplemental-metadata(1).json" {
		t.Fatalf("保留后缀：%q", got)
	}
	if got := SidecarPath("a(1)b(1).jpg", SuffixDropping); got != "ab.supplemental-metadata(1).json" {
		t.Fatalf("去掉后缀：%q", got)
	}
}

func TestSidecarPath_CustomLimit(t *testing.T) {
	r := Rules{StemLimit: 10}
	if got := r.SidecarPath("picture.jpeg", SuffixPreserving); got != "picture.jp.json" {
		t.Fatalf("自定义上限未生效：%q", got)
	}
	// 非正数回落到默认值。
	if got := (Rules{}).SidecarPath("picture.jpeg", SuffixPreserving); got != "picture.jpeg.supplemental-metadata.json" {
		t.Fatalf("零值规则应使用默认上限：%q", got)
	}
}

func TestSidecarPath_Deterministic(t *testing.T) {
	for _, m := range []Mode{SuffixPreserving, SuffixDropping} {
		a := SidecarPath("IMG_20131124_115016-edited(1).jpg", m)
		b := SidecarPath("IMG_20131124_115016-edited(1).jpg", m)
		if a != b {
			t.Fatalf("同输入两次结果不同（%s）：%q vs %q", m, a, b)
		}
	}
}

func TestSidecarPaths_OrderAndDedup(t *testing.T) {
	got := Default().SidecarPaths("photo.jpg")
	if len(got) != 2 || got[0] != "photo.jpg.supplemental-metadata.json" || got[1] != "photo.supplemental-metadata.json" {
		t.Fatalf("候选顺序不符合预期：%v", got)
	}

	// 上限极短时两种约定截断后相同，只保留一个。
	got = Rules{StemLimit: 3}.SidecarPaths("photo.jpg")
	if len(got) != 1 || got[0] != "pho.json" {
		t.Fatalf("期望去重后只有 1 个候选：%v", got)
	}
}
