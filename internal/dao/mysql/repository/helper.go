// Package repository 提供各实体的 GORM Repository 实现
package repository

import (
	"errors"
	"fmt"

	"chat_relay_server/pkg/errorx"

	"gorm.io/gorm"
)

// wrapDBError 包装数据库错误为带业务码的 CodeError
// gorm.ErrRecordNotFound 映射为 CodeNotFound，其余映射为 CodeDBError
func wrapDBError(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.Wrap(err, errorx.CodeNotFound, msg)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msg)
}

// wrapDBErrorf 同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	return wrapDBError(err, fmt.Sprintf(format, args...))
}
