package train

import (
	"sort"

	"github.com/canteenhub/predictkit/core"
)

// mineRules 从用户“购物篮”挖掘关联规则（frequently bought together）。
//
// 篮子 = 单个用户历史上点过的菜品去重集合，份数在此处不参与计算。
// 对每个在同一篮子里共同出现的无序菜品对计数，同时统计每个菜品的出现篮数。
// 共现篮数 >= minSupport 的对产出两条有向置信度边：
//
//	confidence(A→B) = pairCount(A,B) / occurrence(A)
//
// 方向性是有意的：occurrence(A) 与 occurrence(B) 一般不同，
// “点了 A 的人也点 B”与反方向的置信度并不相等。
func mineRules(rows []interaction, minSupport int) map[string][]core.Rule {
	baskets := make(map[string]map[string]struct{})
	for _, row := range rows {
		basket, ok := baskets[row.userID]
		if !ok {
			basket = make(map[string]struct{})
			baskets[row.userID] = basket
		}
		basket[row.dishID] = struct{}{}
	}

	type pair struct{ a, b string } // a < b，保证无序对只计一次
	pairCounts := make(map[pair]int)
	occurrences := make(map[string]int)

	for _, basket := range baskets {
		dishes := make([]string, 0, len(basket))
		for dish := range basket {
			dishes = append(dishes, dish)
		}
		sort.Strings(dishes)

		for i, a := range dishes {
			occurrences[a]++
			for _, b := range dishes[i+1:] {
				pairCounts[pair{a: a, b: b}]++
			}
		}
	}

	rules := make(map[string][]core.Rule)
	for p, count := range pairCounts {
		if count < minSupport {
			continue
		}
		if occ := occurrences[p.a]; occ > 0 {
			rules[p.a] = append(rules[p.a], core.Rule{DishID: p.b, Confidence: float64(count) / float64(occ)})
		}
		if occ := occurrences[p.b]; occ > 0 {
			rules[p.b] = append(rules[p.b], core.Rule{DishID: p.a, Confidence: float64(count) / float64(occ)})
		}
	}

	// 置信度降序；并列时按菜品 ID 升序，保证确定性
	for dish := range rules {
		list := rules[dish]
		sort.Slice(list, func(i, j int) bool {
			if list[i].Confidence != list[j].Confidence {
				return list[i].Confidence > list[j].Confidence
			}
			return list[i].DishID < list[j].DishID
		})
		rules[dish] = list
	}
	return rules
}
