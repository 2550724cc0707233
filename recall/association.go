package recall

import (
	"context"
	"sort"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/pipeline"
	"github.com/canteenhub/predictkit/pkg/utils"
)

// Association 是关联规则召回源：“点了这些菜的人还常点什么”。
//
// 从目标用户的历史里取至多 3 个种子菜品（按菜品 ID 升序取最小的 3 个，
// 保证确定性），逐个查关联规则表，产出置信度作为分数的候选。
// 用户无历史或种子菜品没有规则时返回空候选集，不视为错误。
type Association struct {
	// Models 提供当前生效的模型快照
	Models core.ModelProvider

	// MaxSeeds 参与查表的种子菜品数，默认 3
	MaxSeeds int

	// PerSeed 每个种子菜品最多产出的候选数，默认 10
	PerSeed int
}

func (r *Association) Name() string        { return "recall.assoc" }
func (r *Association) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Association) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Association) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Models == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	perSeed := r.PerSeed
	if perSeed <= 0 {
		perSeed = 10
	}
	maxSeeds := r.MaxSeeds
	if maxSeeds <= 0 {
		maxSeeds = 3
	}
	return AssociationRecall(r.Models.Current(), rctx.UserID, maxSeeds, perSeed), nil
}

// AssociationRecall 是关联规则召回的纯函数形式。
func AssociationRecall(m *core.Model, userID string, maxSeeds, perSeed int) []*core.Item {
	history := m.UserHistory(userID)
	if len(history) == 0 {
		return nil
	}

	seeds := make([]string, 0, len(history))
	for dishID, qty := range history {
		if qty > 0 {
			seeds = append(seeds, dishID)
		}
	}
	sort.Strings(seeds)
	if len(seeds) > maxSeeds {
		seeds = seeds[:maxSeeds]
	}

	var out []*core.Item
	for _, seed := range seeds {
		rules := m.Rules[seed]
		if len(rules) > perSeed {
			rules = rules[:perSeed]
		}
		for _, rule := range rules {
			it := core.NewItem(rule.DishID)
			it.Score = rule.Confidence
			it.SetReason(ReasonAssociation)
			it.PutLabel(core.LabelRecallSource, utils.Label{Value: "assoc", Source: "recall"})
			out = append(out, it)
		}
	}
	return out
}
