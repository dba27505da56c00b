// 包 selection：按会话记住用户最后绘制的选区，刷新页面或调整侧边栏后可重新应用
package selection

import (
	"context"
	"errors"
)

// ErrEmptySession 会话 id 为空时保存失败
var ErrEmptySession = errors.New("selection: empty session id")

// Store：选区存储
// 约束：保存的是原始几何 JSON，读取后由调用方重新解析与校验；不存在时 ok=false 且 err=nil
type Store interface {
	Save(ctx context.Context, session string, geometry []byte) error
	Load(ctx context.Context, session string) ([]byte, bool, error)
}
