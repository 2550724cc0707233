// Package recommend 是个性化点餐推荐的组合层（Composer）：
// 按严格优先级合并协同过滤、关联规则、热门兜底三路信号，
// 产出去重、排序、截断后的推荐列表，并负责模型的训练与原子替换。
package recommend

import (
	"context"
	"log/slog"
	"sort"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/recall"
	"github.com/canteenhub/predictkit/train"
)

// Recommendation 是一条面向调用方的推荐结果。
type Recommendation struct {
	DishID string  `json:"dish_id"`
	Score  float64 `json:"score"` // [0, 1]
	Reason string  `json:"reason"`
}

// Recommender 是推荐服务的入口。
//
// 降级链：协同过滤 → 关联规则 → 热门兜底。每一级只在信号缺失时由下一级
// 补位；任何一级的退化（未知用户、空模型、数值退化）都表现为该级零候选，
// 绝不向调用方抛错。
type Recommender struct {
	// Models 持有当前生效的模型（必填，见 NewRecommender）
	Models *ModelStore

	// Trainer 为 nil 时使用默认策略参数（最小订单 10、最小支持度 3、热门 20）
	Trainer *train.Trainer

	// Neighbors 协同过滤参与加权的相似用户数，默认 10
	Neighbors int

	// Logger 默认 slog.Default()
	Logger *slog.Logger
}

// NewRecommender 创建推荐服务并尝试从 Store 恢复上次训练的模型。
func NewRecommender(ctx context.Context, store core.Store) *Recommender {
	models := NewModelStore(store, DefaultModelKey)
	models.Load(ctx)
	return &Recommender{Models: models}
}

func (r *Recommender) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

func (r *Recommender) trainer() *train.Trainer {
	if r.Trainer != nil {
		return r.Trainer
	}
	return &train.Trainer{}
}

func (r *Recommender) neighbors() int {
	if r.Neighbors > 0 {
		return r.Neighbors
	}
	return 10
}

// Train 从订单全量重建模型，并在成功后原子替换当前模型、同步持久化。
//
// 订单数不足时返回 INSUFFICIENT_DATA 领域错误（core.IsInsufficientData 判别），
// 此时已加载的旧模型保持不变。持久化失败只记日志：内存中的新模型已生效，
// 下一次成功训练会重写 blob。
func (r *Recommender) Train(ctx context.Context, orders []train.Order) (train.Summary, error) {
	model, summary, err := r.trainer().Train(orders)
	if err != nil {
		return summary, err
	}

	r.Models.Swap(model) // 先交换：立即服务最新模型
	if err := r.Models.Save(ctx); err != nil {
		r.logger().Warn("model persist failed, serving from memory",
			"key", r.Models.Key, "error", err)
	}

	r.logger().Info("recommendation model trained",
		"orders", summary.OrdersCount,
		"users", summary.UsersCount,
		"items", summary.ItemsCount,
		"rules", summary.RulesCount)
	return summary, nil
}

// Recommend 为用户产出至多 limit 条推荐。
//
// canteenID 当前只接收、不参与结果过滤（与线上行为一致）。
//
// 策略按严格优先级依次产出候选：
//  1. 用户有历史 → 协同过滤，请求 2×limit 个候选
//  2. 用户有历史 → 关联规则（至多 3 个种子菜品）
//  3. 候选总数仍不足 limit → 热门榜单兜底（固定分数 0.5）
//
// 之后按出现顺序去重（先出现的策略胜出）、按分数稳定降序排序、截断到 limit。
// 未知用户直接落到第 3 步；模型与榜单都为空时返回空列表，永不报错。
func (r *Recommender) Recommend(_ context.Context, userID string, limit int, canteenID string) []Recommendation {
	_ = canteenID
	if limit <= 0 {
		return []Recommendation{}
	}

	m := r.Models.Current()
	var candidates []*core.Item

	if m.HasUser(userID) {
		candidates = append(candidates,
			recall.CollaborativeRecall(m, userID, r.neighbors(), 2*limit)...)
		candidates = append(candidates,
			recall.AssociationRecall(m, userID, 3, limit)...)
	}

	if len(candidates) < limit {
		popular := m.PopularDishes
		if len(popular) > limit {
			popular = popular[:limit]
		}
		candidates = append(candidates, recall.PopularItems(popular)...)
	}

	unique := recall.MergeFirst(candidates)

	// 稳定排序：同分时保留策略优先级顺序
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Score > unique[j].Score
	})
	if len(unique) > limit {
		unique = unique[:limit]
	}

	out := make([]Recommendation, 0, len(unique))
	for _, it := range unique {
		out = append(out, Recommendation{
			DishID: it.ID,
			Score:  it.Score,
			Reason: it.Reason(),
		})
	}
	return out
}
