package recall

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/pipeline"
	"github.com/canteenhub/predictkit/pkg/utils"
)

// Fanout 是一个 Recall Node：并发执行多个召回源，并按源的声明顺序合并结果。
// 单个源超时或出错时按“零候选”处理，不中断其他源。
//
// 合并是确定性的：各源结果先按源的索引归位，再按索引顺序拼接，
// 去重时保留最先出现的候选（索引小的源优先级高）。
type Fanout struct {
	Sources       []Source
	Dedup         bool
	Timeout       time.Duration // 每个召回源的超时时间
	MaxConcurrent int           // 最大并发数（0 表示无限制）
}

func (n *Fanout) Name() string        { return "recall.fanout" }
func (n *Fanout) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fanout) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	if len(n.Sources) == 0 {
		return nil, nil
	}

	// 结果按源索引归位，合并顺序与 Sources 声明顺序一致
	results := make([][]*core.Item, len(n.Sources))
	eg, egCtx := errgroup.WithContext(ctx)
	if n.MaxConcurrent > 0 {
		eg.SetLimit(n.MaxConcurrent)
	}

	for i, src := range n.Sources {
		idx, s := i, src
		eg.Go(func() error {
			recallCtx := egCtx
			if n.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, n.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx)
			if err != nil {
				// 策略级失败等价于该策略零候选，不中断其他召回源
				return nil
			}

			// 记录召回来源 label，方便 explain / 观测
			for _, it := range items {
				it.PutLabel(core.LabelRecallSource, utils.Label{Value: s.Name(), Source: "recall"})
			}
			results[idx] = items
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	all := make([]*core.Item, 0)
	for _, items := range results {
		all = append(all, items...)
	}
	if !n.Dedup {
		return all, nil
	}
	return MergeFirst(all), nil
}

// MergeFirst 按 ID 去重，保留第一个出现的候选；后续重复项只合并观测用标签。
// 推荐理由与分数始终属于最先产出该候选的策略。
func MergeFirst(all []*core.Item) []*core.Item {
	seen := make(map[string]*core.Item, len(all))
	out := make([]*core.Item, 0, len(all))
	for _, it := range all {
		if it == nil {
			continue
		}
		if old, ok := seen[it.ID]; ok {
			if lbl, exists := it.Labels[core.LabelRecallSource]; exists {
				old.PutLabel(core.LabelRecallSource, lbl)
			}
			continue
		}
		seen[it.ID] = it
		out = append(out, it)
	}
	return out
}
