package rerank

import (
	"context"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个菜品。
// 通常放在 rerank.sort 之后，保证返回结果数不超过请求的 limit。
type TopNNode struct {
	// N 要保留的菜品数量（Top N）
	// 如果 N <= 0，则返回所有菜品（不截断）
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	if len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
