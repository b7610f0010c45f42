package errno

/*
 * errno规则：服务级(1位数) 模块级(2 位数) 具体错误码(4位数)
 */

var (
	ErrOK = NewError(0, "OK")

	// 服务级错误
	ErrServer          = NewError(1000001, "internal error")
	ErrParam           = NewError(1000002, "invalid parameter")
	ErrTooManyRequests = NewError(1000003, "too many requests")
	ErrBodyTooLarge    = NewError(1000004, "request body too large")

	// 模块级错误码 - flv模块(01)
	ErrMalformedHeader  = NewError(2010001, "malformed flv header")
	ErrTruncatedPayload = NewError(2010002, "truncated tag payload")
)
