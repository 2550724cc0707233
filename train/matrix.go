package train

import "github.com/canteenhub/predictkit/pkg/conv"

// interaction 是展平后的一行交互记录：一个订单行对应一行。
type interaction struct {
	userID   string
	dishID   string
	quantity float64
}

// flattenOrders 把订单的行项目展平为交互行。
// 标识符统一规范化；份数缺省/非正时按 1 处理；空 ID 的行直接丢弃。
func flattenOrders(orders []Order) []interaction {
	rows := make([]interaction, 0, len(orders))
	for _, order := range orders {
		userID := conv.NormalizeID(order.UserID)
		if userID == "" {
			continue
		}
		for _, item := range order.Items {
			dishID := conv.NormalizeID(item.DishID)
			if dishID == "" {
				continue
			}
			qty := item.Quantity
			if qty <= 0 {
				qty = 1
			}
			rows = append(rows, interaction{userID: userID, dishID: dishID, quantity: qty})
		}
	}
	return rows
}

// buildMatrix 把交互行聚合为 用户 → 菜品 → 累计份数 的交互矩阵。
// 同一 (用户, 菜品) 键在此处预聚合，矩阵中不会重复出现；
// 不存在的键视为 0，不显式填充。
func buildMatrix(rows []interaction) map[string]map[string]float64 {
	matrix := make(map[string]map[string]float64)
	for _, row := range rows {
		userRow, ok := matrix[row.userID]
		if !ok {
			userRow = make(map[string]float64)
			matrix[row.userID] = userRow
		}
		userRow[row.dishID] += row.quantity
	}
	return matrix
}
