package recall

import (
	"context"
	"math"
	"sort"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/pipeline"
	"github.com/canteenhub/predictkit/pkg/utils"
)

// Collaborative 是基于用户的协同过滤召回源（User-based CF, u2i）。
//
// 核心思想：“口味相似的用户，点相似的菜”。
//
// 算法流程：
//  1. 目标用户的交互行作为行为向量（菜品 → 累计份数）
//  2. 与矩阵中其余每个用户逐一计算余弦相似度
//  3. 取 TopK 相似用户（排除自己；并列时按用户 ID 升序，保证确定性）
//  4. 相似用户点过、目标用户未点过的菜品加权累加：score += 份数 × 相似度
//  5. 总分除以邻居数做归一化，并截断到 1.0
//
// 退化情形（全零向量、矩阵中只有自己）返回空候选集，不视为错误：
// 上层 Composer 据此降级到下一个策略。
type Collaborative struct {
	// Models 提供当前生效的模型快照
	Models core.ModelProvider

	// Neighbors 参与加权的相似用户数，默认 10
	Neighbors int

	// TopK 返回的候选菜品数，默认 20
	TopK int
}

func (r *Collaborative) Name() string        { return "recall.u2i" }
func (r *Collaborative) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Collaborative) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Collaborative) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Models == nil || rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	topK := r.TopK
	if topK <= 0 {
		topK = 20
	}
	return CollaborativeRecall(r.Models.Current(), rctx.UserID, r.neighbors(), topK), nil
}

func (r *Collaborative) neighbors() int {
	if r.Neighbors > 0 {
		return r.Neighbors
	}
	return 10
}

// CollaborativeRecall 是协同过滤的纯函数形式，Composer 按请求量直接调用。
// 对固定的模型快照与参数，输出完全确定。
func CollaborativeRecall(m *core.Model, userID string, neighbors, topK int) []*core.Item {
	history := m.UserHistory(userID)
	if len(history) == 0 {
		return nil
	}

	type userSim struct {
		userID     string
		similarity float64
	}
	sims := make([]userSim, 0)

	for otherID, row := range m.Interactions {
		if otherID == userID {
			continue // 跳过自己
		}
		sim := cosine(history, row)
		if sim > 0 { // 只保留正相似度
			sims = append(sims, userSim{userID: otherID, similarity: sim})
		}
	}
	if len(sims) == 0 {
		return nil
	}

	sort.Slice(sims, func(i, j int) bool {
		if sims[i].similarity != sims[j].similarity {
			return sims[i].similarity > sims[j].similarity
		}
		return sims[i].userID < sims[j].userID
	})
	if len(sims) > neighbors {
		sims = sims[:neighbors]
	}

	// 加权累加相似用户的偏好，跳过目标用户已点过的菜品
	scores := make(map[string]float64)
	for _, s := range sims {
		for dishID, qty := range m.Interactions[s.userID] {
			if qty <= 0 {
				continue
			}
			if ordered, ok := history[dishID]; ok && ordered > 0 {
				continue
			}
			scores[dishID] += qty * s.similarity
		}
	}
	if len(scores) == 0 {
		return nil
	}

	dishes := make([]string, 0, len(scores))
	for dish := range scores {
		dishes = append(dishes, dish)
	}
	sort.Slice(dishes, func(i, j int) bool {
		if scores[dishes[i]] != scores[dishes[j]] {
			return scores[dishes[i]] > scores[dishes[j]]
		}
		return dishes[i] < dishes[j]
	})
	if len(dishes) > topK {
		dishes = dishes[:topK]
	}

	out := make([]*core.Item, 0, len(dishes))
	for _, dish := range dishes {
		it := core.NewItem(dish)
		// 按邻居数归一化并截断到 1.0
		it.Score = math.Min(scores[dish]/float64(neighbors), 1.0)
		it.SetReason(ReasonCollaborative)
		it.PutLabel(core.LabelRecallSource, utils.Label{Value: "u2i", Source: "recall"})
		out = append(out, it)
	}
	return out
}

// cosine 计算两个稀疏向量的余弦相似度。零向量返回 0。
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
