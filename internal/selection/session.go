package selection

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "crashmap_session"
)

// SessionID 取请求的会话 id：优先 X-Session-ID 头，其次 cookie；都没有或不是合法 uuid 时生成新的并写回 cookie
// 约束：只接受 uuid，避免任意字符串进入 Redis 键
func SessionID(w http.ResponseWriter, r *http.Request, ttl time.Duration) string {
	if id, ok := PeekSessionID(r); ok {
		return id
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, id)
	return id
}

// PeekSessionID 只读取，不生成
func PeekSessionID(r *http.Request) (string, bool) {
	if v := r.Header.Get(SessionHeader); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			return id.String(), true
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String(), true
		}
	}
	return "", false
}
