package scan

import (
	"errors"
	"fmt"
)

// 任务编排各环节的错误归类
// 探测不到目标不算错误(负向结论)，这里只收编排环节真正的失败
const (
	// KindValidation 入参校验失败，任务创建前就被拒绝
	KindValidation = "validation"
	// KindCapability 缺少必要的协议客户端能力，不重试
	KindCapability = "capability_unavailable"
	// KindPersistence 任务/批次/结果状态落库失败
	KindPersistence = "persistence"
	// KindUnexpected 探测环节的其他未预期错误
	KindUnexpected = "unexpected_probe"
)

// 编排环节名，失败归因到环节是一等字段而不是拼在消息里
const (
	StepProbe     = "probe"
	StepPersist   = "persist"
	StepAggregate = "aggregate"
)

// StepError 带环节归因的编排错误
type StepError struct {
	Step string // 失败发生的环节
	Kind string // 错误归类
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step=%s kind=%s: %v", e.Step, e.Kind, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError 构造环节错误
func NewStepError(step, kind string, err error) *StepError {
	return &StepError{Step: step, Kind: kind, Err: err}
}

// ValidationError 入参校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidationError 判断是否为校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
