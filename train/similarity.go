package train

import "math"

// itemSimilarity 计算菜品-菜品余弦相似度：把交互矩阵按用户维度转置，
// 每个菜品得到一个 用户 → 份数 的稀疏向量，两两计算余弦。
// 只保留相似度 > 0 的非对角项（对角恒为 1，无信息量）。
//
// 默认推荐路径不消费此结构（serving 时现算用户-用户相似度），
// 随模型保留供 i2i 类策略使用。
func itemSimilarity(matrix map[string]map[string]float64) map[string]map[string]float64 {
	// 转置：菜品 → 用户 → 份数
	byDish := make(map[string]map[string]float64)
	for userID, row := range matrix {
		for dishID, qty := range row {
			vec, ok := byDish[dishID]
			if !ok {
				vec = make(map[string]float64)
				byDish[dishID] = vec
			}
			vec[userID] = qty
		}
	}

	sim := make(map[string]map[string]float64, len(byDish))
	dishes := make([]string, 0, len(byDish))
	for dish := range byDish {
		dishes = append(dishes, dish)
	}

	for i, a := range dishes {
		for _, b := range dishes[i+1:] {
			s := cosine(byDish[a], byDish[b])
			if s <= 0 {
				continue
			}
			if sim[a] == nil {
				sim[a] = make(map[string]float64)
			}
			if sim[b] == nil {
				sim[b] = make(map[string]float64)
			}
			sim[a][b] = s
			sim[b][a] = s
		}
	}
	return sim
}

// cosine 计算两个稀疏向量的余弦相似度。零向量返回 0（相似度未定义时按无信号处理）。
func cosine(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for k, va := range a {
		normA += va * va
		if vb, ok := b[k]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		normB += vb * vb
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
