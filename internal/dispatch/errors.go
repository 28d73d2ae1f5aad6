package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 对应服务器的 404，按天或按员工加载时表示没有记录
	ErrNotFound = errors.New("not found")
	// ErrInFlight 表示同一操作的上一次请求尚未结束
	ErrInFlight = errors.New("operation already in flight")
	// ErrCanceled 表示用户在确认对话框中取消了操作
	ErrCanceled = errors.New("canceled by user")
	// ErrPresenceBeforeConfirmation 表示记录尚未确认就收到了出勤状态
	ErrPresenceBeforeConfirmation = errors.New("presence requires a confirmed record")
	ErrNothingStaged              = errors.New("no staged decision to submit")
	ErrPhotoConflict              = errors.New("a new photo and removePhoto are mutually exclusive")
)

// ValidationError 在发出任何网络请求之前返回
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// NetworkError 表示请求没有得到服务器的响应
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ServerError 表示服务器返回了非 2xx 状态码或 success=false
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server responded %d: %s", e.Status, e.Message)
}

// PartialFailureError 表示停职警告已经创建，但标记班次失败且回滚警告也失败
type PartialFailureError struct {
	WarningID       string
	Err             error
	CompensationErr error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("suspension warning %s was created but the shifts were not suspended (%v) and the warning could not be removed (%v)", e.WarningID, e.Err, e.CompensationErr)
}

func (e *PartialFailureError) Unwrap() []error {
	return []error{e.Err, e.CompensationErr}
}
