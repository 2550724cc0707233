package recall

import (
	"context"

	"github.com/canteenhub/predictkit/core"
)

// Source 表示一个可复用的召回策略单元（协同过滤/关联规则/热门/...）。
// 可以把它理解为“可并发 fan-out 的策略单元”。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// 各策略写入的推荐理由。
const (
	ReasonCollaborative = "based on previous orders"
	ReasonAssociation   = "frequently ordered together"
	ReasonPopular       = "popular choice"
)
