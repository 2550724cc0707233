package sentiment

import (
	"math"
	"regexp"
	"strings"
	"sync"
)

// 情感分类阈值：极性在 (-0.1, 0.1] 区间视为中性。
const neutralThreshold = 0.1

// Result 是单条评论的情感分析结果。
type Result struct {
	// Sentiment 分类：positive / neutral / negative
	Sentiment string `json:"sentiment"`

	// Score 极性分数，[-1, 1]
	Score float64 `json:"score"`

	// Confidence 主观程度，[0, 1]，情感词越密集越高
	Confidence float64 `json:"confidence"`

	// Keywords 命中的情感关键词，至多 5 个
	Keywords []string `json:"keywords"`

	// Aspects 各维度分数（food_quality / service / value），
	// 评论未提及的维度不出现
	Aspects map[string]float64 `json:"aspects"`
}

// Review 是一条待分析的评论。
type Review struct {
	ReviewID string `json:"review_id"`
	DishID   string `json:"dish_id,omitempty"`
	Text     string `json:"text"`
}

// BatchResult 是批量分析中单条评论的结果。
type BatchResult struct {
	ReviewID  string `json:"review_id"`
	DishID    string `json:"dish_id,omitempty"`
	Sentiment Result `json:"sentiment"`
}

// Analyzer 是基于词表的评论情感分析器。
//
// 极性由正负情感词的命中比例决定，无任何外部模型依赖，
// 对同一文本的输出完全确定。同时维护按食堂聚合的洞察缓存。
type Analyzer struct {
	mu    sync.RWMutex
	cache map[string]*CanteenInsights
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{cache: make(map[string]*CanteenInsights)}
}

var urlPattern = regexp.MustCompile(`(http|www)\S+`)

// Analyze 分析单条评论。
// 文本为空或过短时返回中性零值结果，不报错。
func (a *Analyzer) Analyze(text string) Result {
	if len(strings.TrimSpace(text)) < 3 {
		return Result{
			Sentiment: "neutral",
			Keywords:  []string{},
			Aspects:   map[string]float64{},
		}
	}

	cleaned := cleanText(text)

	polarity, subjectivity := scoreText(cleaned)

	sentiment := "neutral"
	switch {
	case polarity > neutralThreshold:
		sentiment = "positive"
	case polarity < -neutralThreshold:
		sentiment = "negative"
	}

	return Result{
		Sentiment:  sentiment,
		Score:      round2(polarity),
		Confidence: round2(subjectivity),
		Keywords:   extractKeywords(cleaned),
		Aspects:    analyzeAspects(cleaned, polarity),
	}
}

// AnalyzeBatch 批量分析评论，结果顺序与输入一致。
func (a *Analyzer) AnalyzeBatch(reviews []Review) []BatchResult {
	out := make([]BatchResult, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, BatchResult{
			ReviewID:  r.ReviewID,
			DishID:    r.DishID,
			Sentiment: a.Analyze(r.Text),
		})
	}
	return out
}

// cleanText 规范化文本：小写、去 URL、折叠空白。
func cleanText(text string) string {
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// scoreText 用词表命中计算极性和主观度。
// 极性 = (正命中 - 负命中) / 总命中；主观度 = 总命中 / 词数，截断到 1。
func scoreText(text string) (polarity, subjectivity float64) {
	var pos, neg int
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			neg++
		}
	}

	total := pos + neg
	if total == 0 {
		return 0, 0
	}
	polarity = float64(pos-neg) / float64(total)

	words := len(strings.Fields(text))
	if words > 0 {
		subjectivity = math.Min(float64(total)/float64(words), 1.0)
	}
	return polarity, subjectivity
}

// extractKeywords 按词表顺序收集命中的情感词，至多 5 个。
func extractKeywords(text string) []string {
	keywords := make([]string, 0, 5)
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			keywords = append(keywords, w)
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			keywords = append(keywords, w)
		}
	}
	if len(keywords) > 5 {
		keywords = keywords[:5]
	}
	return keywords
}

// analyzeAspects 对评论提及的维度打分，分数取整条评论的极性。
func analyzeAspects(text string, polarity float64) map[string]float64 {
	aspects := make(map[string]float64)
	if containsAny(text, foodTerms) {
		aspects["food_quality"] = round2(polarity)
	}
	if containsAny(text, serviceTerms) {
		aspects["service"] = round2(polarity)
	}
	if containsAny(text, valueTerms) {
		aspects["value"] = round2(polarity)
	}
	return aspects
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
