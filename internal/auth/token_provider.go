package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ==================== 上游令牌 ====================

// ErrUnauthenticated 当前没有可用的登录态
// 提交入口先查它再做任何组装——未登录时一个字节都不该发出去
var ErrUnauthenticated = errors.New("未登录或登录已过期")

// TokenProvider 上游后端的 Bearer 令牌来源
type TokenProvider interface {
	// Token 返回当前有效令牌；没有或已过期返回 ErrUnauthenticated
	Token(ctx context.Context) (string, error)
}

// ==================== 内存实现 ====================

// SessionTokens 进程内令牌持有者
// 登录流程写入，提交流程读取；过期判断用 JWT 自带的 exp 声明，
// 只解析不验签——验签是颁发方后端的事，这里只需要时效
type SessionTokens struct {
	mu    sync.RWMutex
	token string
}

func NewSessionTokens() *SessionTokens {
	return &SessionTokens{}
}

// Store 写入新令牌 (登录/刷新成功后调用)
func (s *SessionTokens) Store(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Clear 清除登录态
func (s *SessionTokens) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// Token 实现 TokenProvider
func (s *SessionTokens) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()

	if token == "" {
		return "", ErrUnauthenticated
	}
	if expired(token) {
		return "", ErrUnauthenticated
	}
	return token, nil
}

// expired 按 exp 声明判断令牌是否过期；解析不了的令牌一律视为过期
func expired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return true
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		// 无 exp 声明的令牌按长期有效处理
		return false
	}
	return exp.Before(time.Now())
}
