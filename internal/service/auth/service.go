// Package auth 实现注册登录和令牌签发
package auth

import (
	"chat_relay_server/internal/dao/mysql/repository"
	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/dto/respond"
	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/errorx"
	jwtutil "chat_relay_server/pkg/util/jwt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	repos *repository.Repositories
	tm    *jwtutil.TokenManager
}

// NewAuthService 创建认证服务实例
func NewAuthService(repos *repository.Repositories, tm *jwtutil.TokenManager) *authService {
	return &authService{
		repos: repos,
		tm:    tm,
	}
}

// Login 校验用户名密码，成功后签发令牌
func (s *authService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	user, err := s.repos.User.FindByUsername(req.Username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errorx.New(errorx.CodeInvalidPassword, "密码错误")
	}

	token, err := s.tm.Issue(user.Username)
	if err != nil {
		zap.L().Error("令牌签发失败", zap.String("username", user.Username), zap.Error(err))
		return nil, errorx.Wrap(err, errorx.CodeServerBusy, "令牌签发失败")
	}

	return &respond.LoginRespond{Token: token}, nil
}

// Register 注册新用户，密码用 bcrypt 存储
func (s *authService) Register(req request.RegisterRequest) error {
	_, err := s.repos.User.FindByUsername(req.Username)
	if err == nil {
		return errorx.New(errorx.CodeUserExist, "用户已存在")
	}
	if !errorx.IsNotFound(err) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "密码加密失败")
	}

	return s.repos.User.Create(&model.User{
		Username: req.Username,
		Password: string(hashed),
	})
}
