// Package respond 定义返回给客户端的 DTO
package respond

// LoginRespond 登录成功的响应，携带签发的 Token
type LoginRespond struct {
	Token string `json:"token"`
}
