package fsx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// 通过可替换的函数指针，让测试能稳定模拟 EXDEV 等错误。
var renameFunc = func(fs afero.Fs, oldpath, newpath string) error {
	return fs.Rename(oldpath, newpath)
}

// PathTypeConflictError 表示目标路径类型冲突（例如期望文件但实际是目录）。
// 上层可把它映射为 error_code=target_conflict。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// CrossDeviceError 表示跨盘（EXDEV）rename 失败，且 copy+delete 兜底也失败。
type CrossDeviceError struct {
	Src string
	Dst string
	Err error
}

func (e *CrossDeviceError) Error() string {
	return fmt.Sprintf("跨盘移动失败（EXDEV，copy+delete 兜底未完成）：%q -> %q：%v", e.Src, e.Dst, e.Err)
}

func (e *CrossDeviceError) Unwrap() error { return e.Err }

// IsCrossDevice 判断 err 是否为跨盘（EXDEV）错误。
func IsCrossDevice(err error) bool {
	var e *CrossDeviceError
	return errors.As(err, &e)
}

// Move 把 src 移动到 dst，绝不覆盖已存在的 dst。
//
// - 同一文件系统：rename（原子）
// - 跨盘（EXDEV）：复制到 dst 同目录的临时文件 -> Sync -> rename 到 dst -> 删除 src
//
// 源文件只会在目标写入成功之后才被删除。
func Move(fs afero.Fs, src, dst string) error {
	if err := checkFree(fs, dst); err != nil {
		return err
	}
	err := renameFunc(fs, src, dst)
	if err == nil {
		return nil
	}
	if !isEXDEV(err) {
		return err
	}
	if err := copyThenRemove(fs, src, dst); err != nil {
		return &CrossDeviceError{Src: src, Dst: dst, Err: err}
	}
	return nil
}

// EnsureDir 确保 dir 是目录（不存在则创建）。
func EnsureDir(fs afero.Fs, dir string) error {
	fi, err := fs.Stat(dir)
	if err == nil {
		if fi.IsDir() {
			return nil
		}
		return &PathTypeConflictError{Path: dir, Want: "dir", Got: "file"}
	}
	if !os.IsNotExist(err) {
		return err
	}
	return fs.MkdirAll(dir, 0o755)
}

// Exists 只做 stat；stat 出错（权限等）时保守地视为存在，避免覆盖。
func Exists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

func checkFree(fs afero.Fs, dst string) error {
	fi, err := fs.Stat(dst)
	if err == nil {
		if fi.IsDir() {
			return &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
		}
		return errors.WithMessagef(os.ErrExist, "目标已存在：%q", dst)
	}
	if !os.IsNotExist(err) {
		return err
	}
	return nil
}

func copyThenRemove(fs afero.Fs, src, dst string) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	dir := filepath.Dir(dst)
	name := filepath.Base(dst)

	// 临时文件必须与目标文件同目录，以保证最后一步 rename 的原子性。
	tmp, err := afero.TempFile(fs, dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return errors.WithMessage(err, "复制失败")
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := fs.Chmod(tmpName, fi.Mode().Perm()); err != nil {
		return err
	}
	_ = fs.Chtimes(tmpName, fi.ModTime(), fi.ModTime())

	// 复制期间目标可能被占用：再确认一次，仍然不覆盖。
	if err := checkFree(fs, dst); err != nil {
		return err
	}
	if err := fs.Rename(tmpName, dst); err != nil {
		return err
	}
	_ = syncDirBestEffort(fs, dir)

	// 目标已落盘，才删除源文件。
	if err := fs.Remove(src); err != nil {
		return errors.WithMessagef(err, "目标已写入 %q，但删除源文件失败", dst)
	}
	return nil
}

func syncDirBestEffort(fs afero.Fs, dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := fs.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
