package xretry

import (
	"errors"

	retry "github.com/avast/retry-go/v5"
)

var (
	// ErrNilContext 表示 context 参数为 nil。
	ErrNilContext = errors.New("xretry: nil context")

	// ErrNilFunc 表示待执行函数为 nil。
	ErrNilFunc = errors.New("xretry: nil function")
)

// RetryableError 由错误自身声明是否可重试。
type RetryableError interface {
	error
	Retryable() bool
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string   { return e.err.Error() }
func (e *permanentError) Unwrap() error   { return e.err }
func (e *permanentError) Retryable() bool { return false }

// Permanent 将 err 标记为不可重试。err 为 nil 时返回 nil。
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsRetryable 报告 err 是否值得重试。
//
// nil 不需要重试；实现 [RetryableError] 的错误按其声明判断；
// 被 retry.Unrecoverable 包装的错误不可重试；其余错误默认可重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if !retry.IsRecoverable(err) {
		return false
	}
	var re RetryableError
	if errors.As(err, &re) {
		return re.Retryable()
	}
	return true
}
