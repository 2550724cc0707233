package core

import "github.com/canteenhub/predictkit/pkg/utils"

// Item 是推荐链路中的统一承载结构：一个候选菜品及其分数、特征与标签。
// Score 用于最终排序；Labels 用于解释（例如推荐理由 reason）与策略驱动。
type Item struct {
	ID       string // 菜品 ID（上游可能是 ObjectID 等结构化值，入库前统一为字符串）
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Reason 返回推荐理由（reason 标签的值）；没有理由时返回空字符串。
func (it *Item) Reason() string {
	if it.Labels == nil {
		return ""
	}
	return it.Labels[LabelReason].Value
}

// SetReason 覆盖写入推荐理由。理由不做 merge 累积：
// 去重时保留首个出现的候选，理由必须与其分数来自同一策略。
func (it *Item) SetReason(reason string) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	it.Labels[LabelReason] = utils.Label{Value: reason, Source: "recall"}
}

// 链路通用的标签 key。
const (
	LabelReason       = "reason"        // 推荐理由（面向用户展示）
	LabelRecallSource = "recall_source" // 召回来源（面向观测/explain）
)
