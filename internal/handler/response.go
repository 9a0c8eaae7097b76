// Package handler 实现 HTTP 接入层
// 统一响应信封：{"code": 业务码, "msg": 消息, "data": 数据}
package handler

import (
	"errors"
	"net/http"

	"chat_relay_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code: errorx.CodeSuccess,
		Msg:  "success",
		Data: data,
	})
}

// HandleError 把业务错误转换为响应
// CodeError 透出业务码和消息，其他错误一律按服务繁忙处理
func HandleError(c *gin.Context, httpStatus int, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		c.JSON(httpStatus, Response{
			Code: codeErr.Code,
			Msg:  codeErr.Msg,
		})
		return
	}

	zap.L().Error("未分类的业务错误", zap.Error(err))
	c.JSON(httpStatus, Response{
		Code: errorx.CodeServerBusy,
		Msg:  "服务繁忙",
	})
}

// HandleParamError 返回参数错误响应
func HandleParamError(c *gin.Context, err error) {
	zap.L().Warn("请求参数错误", zap.Error(err))
	c.JSON(http.StatusBadRequest, Response{
		Code: errorx.CodeInvalidParam,
		Msg:  "请求参数错误",
	})
}

// statusOf 按业务码映射 HTTP 状态码
func statusOf(err error) int {
	switch errorx.GetCode(err) {
	case errorx.CodeNotFound, errorx.CodeUserNotExist:
		return http.StatusNotFound
	case errorx.CodeUnauthorized, errorx.CodeInvalidPassword:
		return http.StatusUnauthorized
	case errorx.CodeUserExist:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
