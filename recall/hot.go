package recall

import (
	"context"
	"encoding/json"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/pipeline"
	"github.com/canteenhub/predictkit/pkg/utils"
)

// PopularScore 是热门兜底候选的固定分数：冷启动用户也能拿到可比较的结果，
// 但不会压过有真实信号的高分候选。
const PopularScore = 0.5

// Hot 是热门菜品召回源，按优先级从多个来源读取榜单：
//   - Store 实现了 KeyValueStore 时优先 ZRange（有序集合，按热度分数排序）
//   - 否则从普通 key 读取 JSON 数组
//   - Store 不可用时回退到模型里的热门榜单
//   - 最后回退到内存 IDs
//
// Hot 同时实现 Source 和 Node 接口，可直接在 Pipeline 中使用。
type Hot struct {
	Models core.ModelProvider

	Store core.Store
	Key   string   // 存储 key，例如 "hot:dishes"
	IDs   []string // fallback 内存列表

	// TopK 返回的候选数，默认 20
	TopK int
}

func (r *Hot) Name() string        { return "recall.hot" }
func (r *Hot) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Hot) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Hot) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	var ids []string

	// 优先从 Store 读取（支持 ZRange 或普通 Get）
	if r.Store != nil && r.Key != "" {
		if kvStore, ok := r.Store.(core.KeyValueStore); ok {
			members, err := kvStore.ZRange(ctx, r.Key, 0, 99)
			if err == nil && len(members) > 0 {
				ids = members
			}
		} else {
			data, err := r.Store.Get(ctx, r.Key)
			if err == nil {
				var parsed []string
				if json.Unmarshal(data, &parsed) == nil {
					ids = parsed
				}
			}
		}
	}

	// Fallback：模型里的热门榜单
	if len(ids) == 0 && r.Models != nil {
		ids = r.Models.Current().PopularDishes
	}
	if len(ids) == 0 {
		ids = r.IDs
	}

	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	if len(ids) > topK {
		ids = ids[:topK]
	}
	return PopularItems(ids), nil
}

// PopularItems 把榜单 ID 列表包装为固定分数的热门候选。
func PopularItems(ids []string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.Score = PopularScore
		it.SetReason(ReasonPopular)
		it.PutLabel(core.LabelRecallSource, utils.Label{Value: "hot", Source: "recall"})
		out = append(out, it)
	}
	return out
}
