package timer

import "errors"

var (
	// ErrUnknownAction 无法识别的操作
	ErrUnknownAction = errors.New("unknown timer action")
	// ErrMissingArgument 操作缺少必要参数
	ErrMissingArgument = errors.New("missing intent argument")
)
