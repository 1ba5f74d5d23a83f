package auth

import (
	"errors"

	"github.com/afr-space/core/internal/modules/user"
)

// Error messages sent to clients.
const (
	msgInvalidCredentials = "用户名或密码错误"
	msgNotLoggedIn        = "未登录"
	msgInvalidSession     = "登录状态无效"
	msgUserMissing        = "用户不存在"
)

var (
	// ErrInvalidCredentials is the single outcome of a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when a request carries no usable session.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// State is the outcome of a session evaluation.
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Reason explains an Unauthenticated decision. It is used for logs,
// metrics and the 401 message, never to grant access.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNoCookie     Reason = "no_cookie"
	ReasonInvalidToken Reason = "invalid_token"
	ReasonUserMissing  Reason = "user_missing"
	ReasonStoreError   Reason = "store_error"
)

// Decision is the result of Gate.Evaluate.
type Decision struct {
	State  State
	User   user.PublicUser
	Reason Reason
}

// Authenticated reports whether the decision grants a session.
func (d Decision) Authenticated() bool { return d.State == Authenticated }

type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK   bool            `json:"ok"`
	User user.PublicUser `json:"user"`
}

type sessionResponse struct {
	User user.PublicUser `json:"user"`
}

func unauthorizedMessage(r Reason) string {
	switch r {
	case ReasonNoCookie:
		return msgNotLoggedIn
	case ReasonUserMissing:
		return msgUserMissing
	default:
		return msgInvalidSession
	}
}
