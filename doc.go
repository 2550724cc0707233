// Package predictkit 是食堂订餐平台的预测服务工具包（Prediction Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐链路通过 Node 串联（Recall → Filter → ReRank → PostProcess）
// - Labels-first: labels 全链路透传，每个候选自带推荐理由，支持 explain / 观测
// - 模型快照: 训练产出不可变模型，服务侧原子切换，训练失败不影响在线结果
// - 软失败降级: 样本不足、实体未知等通过错误代码表达，调用方逐级降级到热门兜底
package predictkit

import "github.com/canteenhub/predictkit/pipeline"

// 轻量 facade：便于用户直接 import "predictkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
