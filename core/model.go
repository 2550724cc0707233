package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// ModelVersion 是模型快照的序列化版本号。
// 矩阵/规则表不是自描述结构，任何 schema 变更都必须升版本并显式迁移。
const ModelVersion = 1

// Rule 是一条关联规则的右部：与源菜品同篮出现的菜品及其置信度。
// confidence(A→B) = 共现篮数(A,B) / 出现篮数(A)，方向性的：A→B 与 B→A 一般不同。
type Rule struct {
	DishID     string  `json:"dish_id"`
	Confidence float64 `json:"confidence"`
}

// Model 是一次训练产出的完整推荐模型快照。
//
// 生命周期：
//   - 每次训练从零整体构建（不做增量合并）
//   - 训练完成后整体替换进程内引用（原子交换，见 recommend.ModelStore）
//   - 持久化仅用于重启恢复，运行期以内存引用为准
type Model struct {
	Version   int       `json:"version"`
	TrainedAt time.Time `json:"trained_at"`

	// Interactions 是 用户 → 菜品 → 累计下单份数 的交互矩阵。
	// 不存在的 (用户, 菜品) 视为 0；同一键永远预聚合，不会重复出现。
	Interactions map[string]map[string]float64 `json:"interactions"`

	// ItemSimilarity 是菜品-菜品余弦相似度（按用户维度转置计算）。
	// 默认推荐路径只消费用户-用户相似度（serving 时现算），
	// 此结构随模型保留，供 i2i 类策略使用。
	ItemSimilarity map[string]map[string]float64 `json:"item_similarity,omitempty"`

	// PopularDishes 按全体用户累计份数降序排列的菜品榜单（截断到固定上限）。
	PopularDishes []string `json:"popular_dishes"`

	// Rules 是 菜品 → 关联规则列表（按置信度降序）。
	Rules map[string][]Rule `json:"rules"`
}

// EmptyModel 返回一个可安全服务的空模型：所有查询都走冷启动降级路径。
func EmptyModel() *Model {
	return &Model{
		Version:      ModelVersion,
		Interactions: make(map[string]map[string]float64),
		Rules:        make(map[string][]Rule),
	}
}

// HasUser 判断用户是否在交互矩阵中有历史。
func (m *Model) HasUser(userID string) bool {
	if m == nil {
		return false
	}
	_, ok := m.Interactions[userID]
	return ok
}

// UserHistory 返回用户的交互行（菜品 → 累计份数）；未知用户返回 nil。
func (m *Model) UserHistory(userID string) map[string]float64 {
	if m == nil {
		return nil
	}
	return m.Interactions[userID]
}

// Encode 将模型编码为带版本号的 JSON blob。
func (m *Model) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// DecodeModel 解码模型 blob，版本不匹配时返回错误而不是猜测字段含义。
func DecodeModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if m.Version != ModelVersion {
		return nil, fmt.Errorf("decode model: unsupported version %d (want %d)", m.Version, ModelVersion)
	}
	if m.Interactions == nil {
		m.Interactions = make(map[string]map[string]float64)
	}
	if m.Rules == nil {
		m.Rules = make(map[string][]Rule)
	}
	return &m, nil
}

// ModelProvider 提供当前生效的模型快照。
// 召回策略只持有 Provider 而不是模型本身，保证读到的永远是完整快照。
type ModelProvider interface {
	Current() *Model
}
