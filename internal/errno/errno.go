package errno

import "encoding/json"

var _ Error = (*err)(nil)

// Error is the JSON envelope every probe server response is wrapped in.
// The With methods return a copy, so the package level values stay shared.
type Error interface {
	// 设置成功时返回的数据, 或失败详情
	WithData(data interface{}) Error

	// 设置当前请求的唯一ID
	WithID(id string) Error

	// 错误码
	Code() int

	// 返回JSON格式的错误详情
	String() string

	i() //为了避免被其他包实现
}

type err struct {
	ErrNo  int         `json:"errno"`          //错误码
	ErrMsg string      `json:"errmsg"`         //错误描述
	Data   interface{} `json:"data,omitempty"` //返回的数据
	ID     string      `json:"id,omitempty"`   //当前请求的唯一ID,便于问题定位
}

func NewError(errno int, errmsg string) Error {
	return &err{
		ErrNo:  errno,
		ErrMsg: errmsg,
		Data:   nil,
	}
}

func (e *err) WithData(data interface{}) Error {
	c := *e
	c.Data = data
	return &c
}

func (e *err) WithID(id string) Error {
	c := *e
	c.ID = id
	return &c
}

func (e *err) Code() int {
	return e.ErrNo
}

func (e *err) String() string {
	raw, _ := json.Marshal(e)
	return string(raw)
}

func (e *err) i() {}
