// Package train 从订单数据离线构建推荐模型：
// 交互矩阵 → 热门榜单 → 关联规则 → 菜品相似度，一次训练整体产出。
package train

import (
	"fmt"
	"time"

	"github.com/canteenhub/predictkit/core"
)

// Order 是一条训练用订单记录。
type Order struct {
	UserID    string      `json:"user_id"`
	Items     []OrderItem `json:"items"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}

// OrderItem 是订单中的一行菜品。Quantity <= 0 时按 1 处理（上游常缺省份数）。
type OrderItem struct {
	DishID   string  `json:"dish_id"`
	Quantity float64 `json:"quantity,omitempty"`
}

// Summary 是一次训练的产出统计，返回给调用方做观测。
type Summary struct {
	OrdersCount        int `json:"orders_count"`
	UsersCount         int `json:"users_count"`
	ItemsCount         int `json:"items_count"`
	PopularDishesCount int `json:"popular_dishes_count"`
	RulesCount         int `json:"association_rules_count"`
}

// Trainer 负责从订单构建模型。零值字段使用默认策略参数。
type Trainer struct {
	// MinOrders 是训练的最小订单数，低于该值返回 INSUFFICIENT_DATA 软失败。
	// 这是防止退化训练的策略阈值，不是技术限制。默认 10。
	MinOrders int

	// MinSupport 是关联规则的最小共现篮数，低于该值的菜品对被丢弃。默认 3。
	MinSupport int

	// TopPopular 是热门榜单的截断长度。默认 20。
	TopPopular int
}

func (t *Trainer) minOrders() int {
	if t.MinOrders > 0 {
		return t.MinOrders
	}
	return 10
}

func (t *Trainer) minSupport() int {
	if t.MinSupport > 0 {
		return t.MinSupport
	}
	return 3
}

func (t *Trainer) topPopular() int {
	if t.TopPopular > 0 {
		return t.TopPopular
	}
	return 20
}

// Train 从零构建一个完整模型快照。
//
// 订单数低于 MinOrders 时返回 INSUFFICIENT_DATA 领域错误（软失败）：
// 调用方据此保留旧模型，不得将 nil 模型投入服务。
func (t *Trainer) Train(orders []Order) (*core.Model, Summary, error) {
	summary := Summary{OrdersCount: len(orders)}

	if len(orders) < t.minOrders() {
		return nil, summary, core.NewDomainError(
			core.ModuleTrain,
			core.ErrorCodeInsufficientData,
			fmt.Sprintf("train: insufficient data, got %d orders (min %d)", len(orders), t.minOrders()),
		)
	}

	rows := flattenOrders(orders)
	matrix := buildMatrix(rows)

	model := &core.Model{
		Version:        core.ModelVersion,
		TrainedAt:      time.Now(),
		Interactions:   matrix,
		ItemSimilarity: itemSimilarity(matrix),
		PopularDishes:  popularDishes(rows, t.topPopular()),
		Rules:          mineRules(rows, t.minSupport()),
	}

	summary.UsersCount = len(matrix)
	summary.ItemsCount = countDishes(matrix)
	summary.PopularDishesCount = len(model.PopularDishes)
	summary.RulesCount = len(model.Rules)
	return model, summary, nil
}

func countDishes(matrix map[string]map[string]float64) int {
	dishes := make(map[string]struct{})
	for _, row := range matrix {
		for dish := range row {
			dishes[dish] = struct{}{}
		}
	}
	return len(dishes)
}
