package request

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50,username"`
	Password string `json:"password" binding:"required,min=6,max=64"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50,username"`
	Password string `json:"password" binding:"required,min=6,max=64"`
}
