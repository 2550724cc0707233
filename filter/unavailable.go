package filter

import (
	"context"
	"encoding/json"

	"github.com/canteenhub/predictkit/core"
)

// Unavailable 过滤掉当前不可售的菜品（停售、售罄、下架）。
// 名单来源按优先级：内存列表 → Store 中的 JSON 数组（由运营侧任务维护）。
type Unavailable struct {
	// DishIDs 是内存中的不可售菜品 ID 列表
	DishIDs []string

	// Store 用于从存储中读取不可售名单（可选）
	Store core.Store

	// Key 是 Store 中的名单 key，例如 "dishes:unavailable"
	Key string
}

func (f *Unavailable) Name() string {
	return "filter.unavailable"
}

func (f *Unavailable) ShouldFilter(
	ctx context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}

	for _, id := range f.DishIDs {
		if item.ID == id {
			return true, nil
		}
	}

	if f.Store != nil && f.Key != "" {
		data, err := f.Store.Get(ctx, f.Key)
		if err == nil {
			var ids []string
			if json.Unmarshal(data, &ids) == nil {
				for _, id := range ids {
					if item.ID == id {
						return true, nil
					}
				}
			}
		}
	}

	return false, nil
}
