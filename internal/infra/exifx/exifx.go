package exifx

import (
	"path/filepath"
	"strings"
	"time"

	dexif "github.com/dsoprea/go-exif/v3"
	"github.com/pkg/errors"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/spf13/afero"
)

// Layout 是 EXIF 日期时间的固定文本格式。
const Layout = "2006:01:02 15:04:05"

// ErrTooLarge 表示文件超过 Options.MaxImageBytes，未做解码。
var ErrTooLarge = errors.New("exifx: 图片超过大小上限")

// ErrNoDate 表示 EXIF 存在但没有 DateTimeOriginal/DateTime。
var ErrNoDate = errors.New("exifx: 没有 DateTimeOriginal/DateTime")

// Options 在构造时显式传入，替代“进程启动时全局注册解码器”这类隐式状态。
type Options struct {
	// HEIC 为 true 时，对 goexif 无法解析的格式（HEIC/PNG 等）改用 EXIF 块搜索。
	HEIC bool
	// MaxImageBytes > 0 时拒绝更大的文件；0 表示不限制。
	MaxImageBytes int64
}

// Decoder 从图片容器中读取内嵌拍摄时间。
type Decoder struct {
	fs   afero.Fs
	opts Options
}

func New(fs afero.Fs, opts Options) *Decoder {
	return &Decoder{fs: fs, opts: opts}
}

// goexif 只认 JPEG/TIFF；其余格式只能走块搜索。
var goexifExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// DecodeTimestamp 依次读取 DateTimeOriginal、DateTime，按本地时区解析。
// ok=false 时 err 描述原因（无 EXIF、无日期字段、格式不支持等），仅用于诊断。
func (d *Decoder) DecodeTimestamp(path string) (time.Time, bool, error) {
	if d.opts.MaxImageBytes > 0 {
		fi, err := d.fs.Stat(path)
		if err != nil {
			return time.Time{}, false, err
		}
		if fi.Size() > d.opts.MaxImageBytes {
			return time.Time{}, false, errors.WithMessagef(ErrTooLarge, "%s（%d 字节）", path, fi.Size())
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	var firstErr error
	if goexifExts[ext] {
		t, err := d.decodeGoexif(path)
		if err == nil {
			return t, true, nil
		}
		firstErr = err
	}

	if !d.opts.HEIC {
		if firstErr == nil {
			firstErr = errors.Errorf("exifx: 不支持的格式 %q（未启用 HEIC/块搜索）", ext)
		}
		return time.Time{}, false, firstErr
	}

	t, err := d.decodeSearch(path)
	if err == nil {
		return t, true, nil
	}
	if firstErr != nil {
		return time.Time{}, false, firstErr
	}
	return time.Time{}, false, err
}

func (d *Decoder) decodeGoexif(path string) (time.Time, error) {
	f, err := d.fs.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil && x == nil {
		return time.Time{}, errors.WithMessage(err, "goexif 解码失败")
	}
	// x != nil 且 err != nil：子 IFD 有问题，但主 IFD 可用，继续取日期。

	for _, name := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, e := x.Get(name)
		if e != nil {
			continue
		}
		s, e := tag.StringVal()
		if e != nil {
			continue
		}
		if t, e := parse(s); e == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrNoDate
}

func (d *Decoder) decodeSearch(path string) (time.Time, error) {
	f, err := d.fs.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	raw, err := dexif.SearchAndExtractExifWithReader(f)
	if err != nil {
		return time.Time{}, errors.WithMessage(err, "EXIF 块搜索失败")
	}
	return dateFromFlat(raw)
}

func dateFromFlat(raw []byte) (time.Time, error) {
	tags, _, err := dexif.GetFlatExifData(raw, &dexif.ScanOptions{})
	if err != nil {
		return time.Time{}, errors.WithMessage(err, "EXIF 解析失败")
	}

	found := map[string]string{}
	for _, et := range tags {
		if et.TagName != "DateTimeOriginal" && et.TagName != "DateTime" {
			continue
		}
		if s, ok := et.Value.(string); ok {
			if _, dup := found[et.TagName]; !dup {
				found[et.TagName] = s
			}
		}
	}
	for _, name := range []string{"DateTimeOriginal", "DateTime"} {
		if s, ok := found[name]; ok {
			if t, e := parse(s); e == nil {
				return t, nil
			}
		}
	}
	return time.Time{}, ErrNoDate
}

func parse(s string) (time.Time, error) {
	s = strings.TrimRight(strings.TrimSpace(s), "\x00")
	return time.ParseInLocation(Layout, s, time.Local)
}
