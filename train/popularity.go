package train

import "sort"

// popularDishes 按全体用户累计份数对菜品降序排列，截断到 topN。
// 每次训练全量重算，不做增量。并列份数时按菜品 ID 升序，保证确定性。
func popularDishes(rows []interaction, topN int) []string {
	totals := make(map[string]float64)
	for _, row := range rows {
		totals[row.dishID] += row.quantity
	}

	dishes := make([]string, 0, len(totals))
	for dish := range totals {
		dishes = append(dishes, dish)
	}
	sort.Slice(dishes, func(i, j int) bool {
		if totals[dishes[i]] != totals[dishes[j]] {
			return totals[dishes[i]] > totals[dishes[j]]
		}
		return dishes[i] < dishes[j]
	})

	if len(dishes) > topN {
		dishes = dishes[:topN]
	}
	return dishes
}
