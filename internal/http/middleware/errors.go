package middleware

import "errors"

var (
	errMissingToken  = errors.New("未登录或登录已过期")
	errForbiddenRole = errors.New("无权限访问")
)
