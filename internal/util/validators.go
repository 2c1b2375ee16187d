package util

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// IsValidHandle 校验用户名格式：小写字母、数字、下划线，3-30位
func IsValidHandle(handle string) bool {
	return handlePattern.MatchString(handle)
}

// ValidateHandle 供 gin binding 注册的 handle 校验器
func ValidateHandle(fl validator.FieldLevel) bool {
	handle, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return IsValidHandle(handle)
}
