package resolve

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/buger/jsonparser"
)

// ErrInvalidJSON 表示 sidecar 不是语法合法的 JSON 文档。
var ErrInvalidJSON = errors.New("sidecar 不是合法的 JSON")

// ErrNoTimestampKey 表示 sidecar 中既没有 photoTakenTime 也没有 creationTime。
var ErrNoTimestampKey = errors.New("sidecar 中没有 photoTakenTime/creationTime")

// 查找顺序固定：拍摄时间优先，其次是上传（创建）时间。
var timestampKeys = [][]string{
	{"photoTakenTime", "timestamp"},
	{"creationTime", "timestamp"},
}

// ParseSidecar 从导出工具的 sidecar JSON 中取出拍摄时间。
//
// 时间戳是 Unix 秒（导出工具写成字符串；数字也接受），转换为本地时间。
func ParseSidecar(b []byte) (time.Time, error) {
	// jsonparser 只按键路径扫描，不校验整个文档；先整体校验，避免残缺文件被当成有效时间。
	if !json.Valid(b) {
		return time.Time{}, ErrInvalidJSON
	}
	_, typ, _, err := jsonparser.Get(b)
	if err != nil {
		return time.Time{}, err
	}
	if typ != jsonparser.Object {
		return time.Time{}, fmt.Errorf("sidecar 顶层不是 JSON 对象（%s）", typ)
	}

	for _, keys := range timestampKeys {
		v, typ, _, err := jsonparser.Get(b, keys...)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			continue
		}
		if err != nil {
			return time.Time{}, err
		}
		switch typ {
		case jsonparser.String, jsonparser.Number:
		default:
			return time.Time{}, fmt.Errorf("%s.%s 类型无效：%s", keys[0], keys[1], typ)
		}
		sec, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s.%s 不是整数秒：%q", keys[0], keys[1], string(v))
		}
		return time.Unix(sec, 0).Local(), nil
	}
	return time.Time{}, ErrNoTimestampKey
}
