package xconf

import "github.com/knadh/koanf/v2"

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 是只读配置视图。
type Config interface {
	// Client 返回当前快照的 koanf 实例。
	Client() *koanf.Koanf

	// Unmarshal 将 path 下的配置反序列化到 target，path 为空时反序列化整个配置。
	Unmarshal(path string, target any) error

	// Map 返回 path 下的原始键值，键名保持原样，不存在时返回空 map。
	Map(path string) map[string]any

	// Exists 报告 path 是否存在。
	Exists(path string) bool

	// Reload 重新读取配置文件，仅对文件配置有效。
	Reload() error

	// Path 返回配置文件路径，非文件配置返回空串。
	Path() string

	// Format 返回配置格式。
	Format() Format
}
