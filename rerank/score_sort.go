package rerank

import (
	"context"
	"sort"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/pipeline"
)

// ScoreSortNode 按分数降序做稳定排序。
// 稳定性是有意的：同分候选保持上游（召回优先级）顺序，保证结果确定。
type ScoreSortNode struct{}

func (n *ScoreSortNode) Name() string {
	return "rerank.sort"
}

func (n *ScoreSortNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *ScoreSortNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) <= 1 {
		return items, nil
	}
	out := make([]*core.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}
