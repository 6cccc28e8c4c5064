package resolve

import (
	"errors"
	"fmt"
	"strings"
)

// MetadataNotFoundError 表示内嵌元数据与两种 sidecar 都无法给出拍摄时间。
// 上层把它映射为 error_code=metadata_not_found，并跳过该文件（不中断整个 run）。
type MetadataNotFoundError struct {
	Path string
	// Sidecars 是实际尝试过的 sidecar 路径（按尝试顺序）。
	Sidecars []string
	// Err 是诊断细节：最后一次 sidecar 解析错误，或内嵌元数据的解码错误；可能为 nil。
	Err error
}

func (e *MetadataNotFoundError) Error() string {
	msg := fmt.Sprintf("找不到拍摄时间：%q（已尝试 sidecar：%s）", e.Path, strings.Join(e.Sidecars, ", "))
	if e.Err != nil {
		return msg + "：" + e.Err.Error()
	}
	return msg
}

func (e *MetadataNotFoundError) Unwrap() error { return e.Err }

// IsMetadataNotFound 判断 err 是否为 MetadataNotFoundError。
func IsMetadataNotFound(err error) bool {
	var e *MetadataNotFoundError
	return errors.As(err, &e)
}

// SidecarParseError 表示 sidecar 存在，但不是合法 JSON 或缺少时间字段。
// 它与“sidecar 不存在”同等对待：继续尝试下一种命名约定。
type SidecarParseError struct {
	Path string
	Err  error
}

func (e *SidecarParseError) Error() string {
	return fmt.Sprintf("sidecar 解析失败：%q：%v", e.Path, e.Err)
}

func (e *SidecarParseError) Unwrap() error { return e.Err }
