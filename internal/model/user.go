// Package model 定义数据库实体模型
package model

import "gorm.io/gorm"

// User 用户模型
// 密码以 bcrypt 哈希存储
type User struct {
	gorm.Model

	// Username 用户名，登录凭证，也是消息 sender 的展示标识
	Username string `gorm:"column:username;uniqueIndex;type:varchar(50);not null;comment:用户名"`

	// Password bcrypt 哈希后的密码
	Password string `gorm:"column:password;type:varchar(80);not null;comment:密码哈希"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
