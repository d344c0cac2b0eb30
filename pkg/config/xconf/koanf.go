package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

type koanfConfig struct {
	k      atomic.Pointer[koanf.Koanf]
	path   string
	format Format
	opts   *Options
}

var _ Config = (*koanfConfig)(nil)

// New 从文件创建配置，按扩展名识别格式（.yaml/.yml/.json）。
func New(path string, opts ...Option) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	c := &koanfConfig{path: path, format: format, opts: applyOptions(opts)}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromBytes 从内存数据创建配置，空数据得到空配置。
func NewFromBytes(data []byte, format Format, opts ...Option) (Config, error) {
	if !isValidFormat(format) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	c := &koanfConfig{format: format, opts: applyOptions(opts)}
	k, err := parse(data, format, c.opts.Delim)
	if err != nil {
		return nil, err
	}
	c.k.Store(k)
	return c, nil
}

// Load 在 path 非空时等价于 New，否则返回空 YAML 配置。
// 用于配置文件可选的命令行入口。
func Load(path string, opts ...Option) (Config, error) {
	if path == "" {
		return NewFromBytes(nil, FormatYAML, opts...)
	}
	return New(path, opts...)
}

func applyOptions(opts []Option) *Options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (c *koanfConfig) Client() *koanf.Koanf {
	return c.k.Load()
}

func (c *koanfConfig) Unmarshal(path string, target any) error {
	if err := c.k.Load().UnmarshalWithConf(path, target, koanf.UnmarshalConf{Tag: c.opts.Tag}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnmarshalFailed, path, err)
	}
	return nil
}

func (c *koanfConfig) Map(path string) map[string]any {
	k := c.k.Load()
	if path != "" {
		k = k.Cut(path)
	}
	// Raw 返回嵌套结构，键名不做大小写转换
	return k.Raw()
}

func (c *koanfConfig) Exists(path string) bool {
	return c.k.Load().Exists(path)
}

// Reload 解析成功后才替换快照，失败时保留旧配置。
func (c *koanfConfig) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k, err := parse(data, c.format, c.opts.Delim)
	if err != nil {
		return err
	}
	c.k.Store(k)
	return nil
}

func (c *koanfConfig) Path() string {
	return c.path
}

func (c *koanfConfig) Format() Format {
	return c.format
}

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func isValidFormat(format Format) bool {
	return format == FormatYAML || format == FormatJSON
}

func parse(data []byte, format Format, delim string) (*koanf.Koanf, error) {
	k := koanf.New(delim)
	if len(data) == 0 {
		return k, nil
	}

	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, ErrUnsupportedFormat
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return k, nil
}
