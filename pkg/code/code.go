package code

import (
	"fmt"
	"net/http"
)

// Kind is the error taxonomy a code belongs to; it decides the HTTP status.
// Kind 是错误码所属的分类，决定 HTTP 状态码
type Kind int

const (
	KindOK Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindGone
	KindValidation
	KindTooManyRequests
	KindInternal
)

var kindStatus = map[Kind]int{
	KindOK:              http.StatusOK,
	KindUnauthorized:    http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindConflict:        http.StatusConflict,
	KindGone:            http.StatusGone,
	KindValidation:      http.StatusBadRequest,
	KindTooManyRequests: http.StatusTooManyRequests,
	KindInternal:        http.StatusInternalServerError,
}

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "OK"
	case KindUnauthorized:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindConflict:
		return "Conflict"
	case KindGone:
		return "Gone"
	case KindValidation:
		return "ValidationError"
	case KindTooManyRequests:
		return "TooManyRequests"
	default:
		return "InternalError"
	}
}

type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// 错误分类
	kind Kind
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}
var sussCodes = map[int]string{}

// NewError registers an error code. Registering the same code twice panics.
// NewError 注册一个错误码，重复注册会 panic
func NewError(code int, kind Kind, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: false, kind: kind, Lang: l}
}

func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, status: true, kind: KindOK, Lang: l}
}

// Clone 创建一个新的 Code 副本
func (e *Code) Clone() *Code {
	c := &Code{
		code:        e.code,
		status:      e.status,
		kind:        e.kind,
		Lang:        e.Lang,
		data:        e.data,
		haveData:    e.haveData,
		haveDetails: e.haveDetails,
	}
	if len(e.details) > 0 {
		c.details = append([]string{}, e.details...)
	}
	return c
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Kind() Kind {
	return e.kind
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// Is lets errors.Is match a decorated clone against its registered code.
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code && t.status == e.status
}

// WithData returns a copy carrying data; registered codes are shared and never mutated.
// WithData 返回携带数据的副本，全局注册的错误码不会被修改
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.haveData = true
	c.data = data
	return c
}

func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// StatusCode maps the taxonomy kind to an HTTP status.
func (e *Code) StatusCode() int {
	if s, ok := kindStatus[e.kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}
