package core

import "github.com/canteenhub/predictkit/pkg/utils"

// RecommendContext 承载一次推荐请求的用户/场景信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string // 学生/用户 ID（统一为字符串，支持所有上游 ID 格式）

	// CanteenID 是请求方传入的食堂 ID。当前版本只透传、不参与结果过滤，
	// 与线上行为保持一致；食堂级过滤若要落地应放在 filter 阶段。
	CanteenID string

	Scene string // 推荐场景：feed / detail / checkout 等

	// Labels 是用户级标签，可驱动整个 Pipeline 行为（新用户、重度用户等）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数：meal_time、limit 档位、实时特征等。
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
