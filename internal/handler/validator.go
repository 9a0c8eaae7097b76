package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 用户名只允许字母、数字、下划线、点和短横线
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.-]+$`)

// RegisterValidations 向 gin 的校验引擎注册自定义规则
// 必须在路由开始处理请求前调用一次
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}
