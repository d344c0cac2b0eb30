package xoption

import "errors"

var (
	// ErrEmptyName 表示选项名称为空。
	ErrEmptyName = errors.New("xoption: empty option name")

	// ErrConflict 表示独占创建时名称已被注册。
	ErrConflict = errors.New("xoption: option already exists")

	// ErrTypeMismatch 表示以不同于首次注册的值类型访问同名选项。
	ErrTypeMismatch = errors.New("xoption: option value type mismatch")

	// ErrUnknownOption 表示按名称设置值时选项未注册。
	ErrUnknownOption = errors.New("xoption: unknown option")

	// ErrNilOwner 表示限定名称的所属对象为 nil。
	ErrNilOwner = errors.New("xoption: nil owner for scoped name")

	// ErrNilOption 表示传入了 nil 选项。
	ErrNilOption = errors.New("xoption: nil option")
)
