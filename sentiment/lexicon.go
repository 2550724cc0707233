package sentiment

// 餐饮评论的情感词表。词表故意保持短小：食堂评论用语高度集中，
// 覆盖常见表达即可，冷僻词对聚合指标影响可以忽略。

var positiveWords = []string{
	"delicious", "tasty", "fresh", "good", "excellent", "amazing",
	"love", "great", "perfect", "wonderful", "fantastic", "yummy",
	"best", "awesome", "nice", "quality", "recommended",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "poor", "horrible", "disgusting",
	"cold", "stale", "tasteless", "overpriced", "slow", "rude",
	"worst", "disappointed", "bland", "soggy", "burnt",
}

// 维度触发词：评论提到相应话题时才给该维度打分。
var (
	foodTerms    = []string{"food", "dish", "taste", "tasty", "delicious", "fresh", "quality"}
	serviceTerms = []string{"service", "staff", "waiter", "serve", "quick", "fast", "slow"}
	valueTerms   = []string{"price", "value", "worth", "cheap", "expensive", "affordable"}
)
