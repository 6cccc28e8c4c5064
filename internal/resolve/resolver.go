package resolve

import (
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/John-Robertt/yymm/internal/domain"
	"github.com/John-Robertt/yymm/internal/naming"
)

// EmbeddedDecoder 读取图片容器内嵌的拍摄时间（DateTimeOriginal，其次 DateTime）。
// ok=false 表示没有可用时间；err 只用于诊断，Resolver 会继续尝试 sidecar。
type EmbeddedDecoder interface {
	DecodeTimestamp(path string) (t time.Time, ok bool, err error)
}

// Resolver 为单个图片确定拍摄时间。
type Resolver struct {
	Fs      afero.Fs
	Decoder EmbeddedDecoder
	Rules   naming.Rules
}

func New(fs afero.Fs, dec EmbeddedDecoder, rules naming.Rules) *Resolver {
	return &Resolver{Fs: fs, Decoder: dec, Rules: rules}
}

// Resolve 按固定顺序尝试：内嵌元数据 -> 保留后缀的 sidecar -> 去掉后缀的 sidecar。
// 都失败时返回 *MetadataNotFoundError。
func (r *Resolver) Resolve(path string) (domain.Timestamp, error) {
	var detail error

	if r.Decoder != nil {
		t, ok, err := r.Decoder.DecodeTimestamp(path)
		if ok {
			return domain.Timestamp{Time: t, Source: domain.SourceEmbedded}, nil
		}
		detail = err
	}

	tried := make([]string, 0, 2)
	for _, sc := range r.Rules.SidecarPaths(path) {
		tried = append(tried, sc)

		b, err := afero.ReadFile(r.Fs, sc)
		if err != nil {
			if !os.IsNotExist(err) {
				detail = &SidecarParseError{Path: sc, Err: err}
			}
			continue
		}
		t, err := ParseSidecar(b)
		if err != nil {
			detail = &SidecarParseError{Path: sc, Err: err}
			continue
		}
		return domain.Timestamp{Time: t, Source: domain.SourceSidecar, Sidecar: sc}, nil
	}

	return domain.Timestamp{}, &MetadataNotFoundError{Path: path, Sidecars: tried, Err: detail}
}
