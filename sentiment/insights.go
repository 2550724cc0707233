package sentiment

// CanteenInsights 是按食堂聚合的评论情感洞察。
type CanteenInsights struct {
	// OverallSentiment 整体倾向：positive / neutral / negative
	OverallSentiment string `json:"overall_sentiment"`

	// AverageScore 平均极性分数
	AverageScore float64 `json:"average_score"`

	// Distribution 各类评论条数
	Distribution map[string]int `json:"sentiment_distribution"`

	// TopPositiveKeywords 高频正面关键词，至多 5 个
	TopPositiveKeywords []string `json:"top_positive_keywords"`

	// TopNegativeKeywords 高频负面关键词，至多 5 个
	TopNegativeKeywords []string `json:"top_negative_keywords"`

	// Trending 趋势：improving / declining / stable
	Trending string `json:"trending"`

	// AspectScores 各维度平均分
	AspectScores map[string]float64 `json:"aspects_scores"`

	// TotalReviews 参与聚合的评论数
	TotalReviews int `json:"total_reviews"`

	// Note 兜底说明（仅无数据时出现）
	Note string `json:"note,omitempty"`
}

// Insights 聚合一个食堂的评论情感。
//
// reviews 为空时返回上次聚合的缓存；无缓存时返回中性兜底。
// 趋势判断要求至少 10 条评论：末 5 条与首 5 条的平均分差超过 ±0.2
// 视为改善/恶化，评论按传入顺序（时间序）处理。
func (a *Analyzer) Insights(canteenID string, reviews []Review) *CanteenInsights {
	if len(reviews) == 0 {
		return a.cachedInsights(canteenID)
	}

	results := make([]Result, 0, len(reviews))
	posCounts := newKeywordCounter()
	negCounts := newKeywordCounter()
	aspectSums := make(map[string]float64)
	aspectCounts := make(map[string]int)

	for _, review := range reviews {
		if review.Text == "" {
			continue
		}
		r := a.Analyze(review.Text)
		results = append(results, r)

		for _, kw := range r.Keywords {
			if isPositiveWord(kw) {
				posCounts.add(kw)
			} else {
				negCounts.add(kw)
			}
		}
		for aspect, score := range r.Aspects {
			aspectSums[aspect] += score
			aspectCounts[aspect]++
		}
	}

	if len(results) == 0 {
		return emptyInsights("")
	}

	distribution := map[string]int{"positive": 0, "neutral": 0, "negative": 0}
	var scoreSum float64
	for _, r := range results {
		distribution[r.Sentiment]++
		scoreSum += r.Score
	}

	avg := scoreSum / float64(len(results))
	overall := "neutral"
	switch {
	case avg > neutralThreshold:
		overall = "positive"
	case avg < -neutralThreshold:
		overall = "negative"
	}

	aspectAvgs := make(map[string]float64, len(aspectSums))
	for aspect, sum := range aspectSums {
		aspectAvgs[aspect] = round2(sum / float64(aspectCounts[aspect]))
	}

	trending := "stable"
	if len(results) >= 10 {
		var recent, older float64
		for _, r := range results[len(results)-5:] {
			recent += r.Score
		}
		for _, r := range results[:5] {
			older += r.Score
		}
		recent /= 5
		older /= 5
		switch {
		case recent > older+0.2:
			trending = "improving"
		case recent < older-0.2:
			trending = "declining"
		}
	}

	insights := &CanteenInsights{
		OverallSentiment:    overall,
		AverageScore:        round2(avg),
		Distribution:        distribution,
		TopPositiveKeywords: posCounts.top(5),
		TopNegativeKeywords: negCounts.top(5),
		Trending:            trending,
		AspectScores:        aspectAvgs,
		TotalReviews:        len(results),
	}

	a.mu.Lock()
	a.cache[canteenID] = insights
	a.mu.Unlock()

	return insights
}

func (a *Analyzer) cachedInsights(canteenID string) *CanteenInsights {
	a.mu.RLock()
	cached := a.cache[canteenID]
	a.mu.RUnlock()

	if cached != nil {
		return cached
	}
	return emptyInsights("no cached data available")
}

func emptyInsights(note string) *CanteenInsights {
	return &CanteenInsights{
		OverallSentiment:    "neutral",
		Distribution:        map[string]int{"positive": 0, "neutral": 0, "negative": 0},
		TopPositiveKeywords: []string{},
		TopNegativeKeywords: []string{},
		Trending:            "stable",
		AspectScores:        map[string]float64{},
		Note:                note,
	}
}

func isPositiveWord(w string) bool {
	for _, p := range positiveWords {
		if w == p {
			return true
		}
	}
	return false
}

// keywordCounter 统计关键词频次，top 结果按频次降序、同频按首次出现顺序，
// 保证同一批评论产出稳定的关键词列表。
type keywordCounter struct {
	counts map[string]int
	order  []string
}

func newKeywordCounter() *keywordCounter {
	return &keywordCounter{counts: make(map[string]int)}
}

func (c *keywordCounter) add(w string) {
	if _, seen := c.counts[w]; !seen {
		c.order = append(c.order, w)
	}
	c.counts[w]++
}

func (c *keywordCounter) top(n int) []string {
	type entry struct {
		word  string
		count int
		seen  int
	}
	entries := make([]entry, 0, len(c.order))
	for i, w := range c.order {
		entries = append(entries, entry{word: w, count: c.counts[w], seen: i})
	}
	// 插入排序规模极小，词表总量不超过几十
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0; j-- {
			a, b := entries[j-1], entries[j]
			if b.count > a.count || (b.count == a.count && b.seen < a.seen) {
				entries[j-1], entries[j] = b, a
			} else {
				break
			}
		}
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.word)
	}
	return out
}
