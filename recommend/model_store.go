package recommend

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/canteenhub/predictkit/core"
)

// DefaultModelKey 是模型 blob 在 Store 中的固定 key。
const DefaultModelKey = "recommend:model"

// ModelStore 持有进程内当前生效的模型快照，并负责与持久化存储的同步。
//
// 并发语义：新模型在旁路整体构建完成后，通过一次原子指针交换替换引用。
// 并发读要么看到交换前的完整旧模型，要么看到交换后的完整新模型，
// 永远不会看到构建中的结构。持久化发生在交换之后：进程立即服务最新模型，
// 交换与落盘之间崩溃则重启后回到上一个 blob，Load 对此是容忍的。
type ModelStore struct {
	// Store 是可选的持久化后端；为 nil 时模型只存在于进程内存
	Store core.Store

	// Key 是模型 blob 的存储 key，默认 DefaultModelKey
	Key string

	// Logger 默认 slog.Default()
	Logger *slog.Logger

	cur atomic.Pointer[core.Model]
}

// NewModelStore 创建一个模型持有者。store 可以为 nil（纯内存模式）。
func NewModelStore(store core.Store, key string) *ModelStore {
	if key == "" {
		key = DefaultModelKey
	}
	return &ModelStore{Store: store, Key: key}
}

func (s *ModelStore) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Current 返回当前生效的模型快照，永不为 nil：
// 未训练/未加载时返回空模型，所有查询走冷启动降级路径。
func (s *ModelStore) Current() *core.Model {
	if m := s.cur.Load(); m != nil {
		return m
	}
	return core.EmptyModel()
}

// Swap 原子替换当前模型引用。nil 模型被忽略：软失败的训练不得清空服务中的模型。
func (s *ModelStore) Swap(m *core.Model) {
	if m == nil {
		return
	}
	s.cur.Store(m)
}

// Load 在进程启动时从 Store 恢复模型。
// 读失败/解码失败只记日志并保持空模型，服务照常启动。
// 持久化是重启恢复的旁路通道，不是运行期的事实来源。
func (s *ModelStore) Load(ctx context.Context) {
	if s.Store == nil {
		return
	}
	data, err := s.Store.Get(ctx, s.Key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			s.logger().Warn("model load failed, starting with empty model",
				"key", s.Key, "error", err)
		}
		return
	}
	m, err := core.DecodeModel(data)
	if err != nil {
		s.logger().Warn("model decode failed, starting with empty model",
			"key", s.Key, "error", err)
		return
	}
	s.cur.Store(m)
	s.logger().Info("model loaded",
		"key", s.Key, "users", len(m.Interactions), "popular", len(m.PopularDishes))
}

// Save 将当前模型同步写入 Store。
func (s *ModelStore) Save(ctx context.Context) error {
	if s.Store == nil {
		return nil
	}
	m := s.cur.Load()
	if m == nil {
		return nil
	}
	data, err := m.Encode()
	if err != nil {
		return err
	}
	return s.Store.Set(ctx, s.Key, data)
}

var _ core.ModelProvider = (*ModelStore)(nil)
