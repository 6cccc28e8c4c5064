//go:build unix

package fsx

import (
	"os"
	"syscall"
	"testing"

	"github.com/spf13/afero"
)

func TestMove_CrossDeviceFallsBackToCopy(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "/src/a.jpg", "hello")
	_ = fs.MkdirAll("/dst", 0o755)

	old := renameFunc
	renameFunc = func(_ afero.Fs, oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = old }()

	if err := Move(fs, "/src/a.jpg", "/dst/a.jpg"); err != nil {
		t.Fatalf("EXDEV 应走 copy+delete 兜底：%v", err)
	}
	b, err := afero.ReadFile(fs, "/dst/a.jpg")
	if err != nil || string(b) != "hello" {
		t.Fatalf("目标内容不一致：%q err=%v", string(b), err)
	}
	if ok, _ := afero.Exists(fs, "/src/a.jpg"); ok {
		t.Fatalf("源文件应在复制成功后删除")
	}
}

func TestMove_CrossDeviceCopyFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = fs.MkdirAll("/dst", 0o755)

	old := renameFunc
	renameFunc = func(_ afero.Fs, oldpath, newpath string) error {
		return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: syscall.EXDEV}
	}
	defer func() { renameFunc = old }()

	// 源文件不存在：兜底复制失败，必须报告 CrossDeviceError。
	err := Move(fs, "/src/missing.jpg", "/dst/a.jpg")
	if !IsCrossDevice(err) {
		t.Fatalf("期望 CrossDeviceError，实际：%T %v", err, err)
	}
}
