package filter

import (
	"context"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/pkg/dsl"
)

// RuleFilter 是配置驱动的规则过滤器：表达式求值为 true 的候选被过滤掉。
// 表达式使用 CEL 语法，可访问 item / label / rctx，例如：
//
//	item.score < 0.2
//	label.recall_source.contains("hot") && rctx.scene == "checkout"
type RuleFilter struct {
	// Expr 是 CEL 表达式；空表达式不过滤任何候选
	Expr string
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}
