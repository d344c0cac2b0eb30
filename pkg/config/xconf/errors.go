package xconf

import "errors"

var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 表示读取配置文件失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 表示解析配置内容失败。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 表示反序列化到目标结构体失败。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")

	// ErrNotReloadable 表示配置不是从文件加载的，无法重载或监视。
	ErrNotReloadable = errors.New("xconf: config is not file backed")
)
