package feature

import (
	"context"
	"strings"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/feast"
	"github.com/canteenhub/predictkit/pipeline"
)

// EnrichNode 是特征注入节点：召回之后批量拉取菜品在线特征，
// 写入每个候选的 Features/Meta，供下游的规则过滤与重排使用。
//
// 特征来源是 Feast Feature Server。取不到特征不阻塞推荐：
// 单次拉取失败时跳过注入，候选原样下传。
type EnrichNode struct {
	// Client Feast 客户端；为 nil 时节点是透传
	Client feast.Client

	// Features 要拉取的特征列表，例如 ["dish_stats:price", "dish_stats:category"]
	Features []string

	// EntityKey 实体键名，默认 "dish_id"
	EntityKey string

	// Project 项目名称（可选，覆盖客户端默认）
	Project string
}

func (n *EnrichNode) Name() string {
	return "feature.enrich"
}

func (n *EnrichNode) Kind() pipeline.Kind {
	return pipeline.KindPostProcess
}

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Client == nil || len(n.Features) == 0 || len(items) == 0 {
		return items, nil
	}

	entityKey := n.EntityKey
	if entityKey == "" {
		entityKey = "dish_id"
	}

	entityRows := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		entityRows = append(entityRows, map[string]interface{}{entityKey: item.ID})
	}
	if len(entityRows) == 0 {
		return items, nil
	}

	resp, err := n.Client.GetOnlineFeatures(ctx, &feast.GetOnlineFeaturesRequest{
		Features:   n.Features,
		EntityRows: entityRows,
		Project:    n.Project,
	})
	if err != nil {
		// 特征服务不可用时降级为透传
		return items, nil
	}

	// 按实体 ID 建索引，候选列表里可能有 nil 占位
	byID := make(map[string]feast.FeatureVector, len(resp.FeatureVectors))
	for _, fv := range resp.FeatureVectors {
		if id, ok := fv.EntityRow[entityKey].(string); ok {
			byID[id] = fv
		}
	}

	for _, item := range items {
		if item == nil {
			continue
		}
		fv, ok := byID[item.ID]
		if !ok {
			continue
		}
		for name, value := range fv.Values {
			key := featureKey(name)
			switch v := value.(type) {
			case float64:
				if item.Features == nil {
					item.Features = make(map[string]float64)
				}
				item.Features[key] = v
			default:
				if item.Meta == nil {
					item.Meta = make(map[string]any)
				}
				item.Meta[key] = v
			}
		}
	}

	return items, nil
}

// featureKey 把 "dish_stats:price" 形式的特征全名化简为 "price"。
func featureKey(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 && i+1 < len(name) {
		return name[i+1:]
	}
	return name
}
