package sentiment

import (
	"testing"
)

func TestAnalyze_Classification(t *testing.T) {
	a := NewAnalyzer()

	tests := []struct {
		name          string
		text          string
		wantSentiment string
	}{
		{
			name:          "positive review",
			text:          "The food was delicious and fresh, great value!",
			wantSentiment: "positive",
		},
		{
			name:          "negative review",
			text:          "Terrible. The rice was cold and stale and the staff was rude.",
			wantSentiment: "negative",
		},
		{
			name:          "no sentiment words",
			text:          "I had lunch here on Tuesday with my colleagues.",
			wantSentiment: "neutral",
		},
		{
			name:          "mixed review balances out",
			text:          "The noodles were delicious but the service was terrible.",
			wantSentiment: "neutral",
		},
		{
			name:          "empty text",
			text:          "",
			wantSentiment: "neutral",
		},
		{
			name:          "too short",
			text:          "ok",
			wantSentiment: "neutral",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.text)
			if got.Sentiment != tt.wantSentiment {
				t.Fatalf("sentiment = %q (score %v), want %q", got.Sentiment, got.Score, tt.wantSentiment)
			}
			if got.Score < -1 || got.Score > 1 {
				t.Fatalf("score %v out of [-1, 1]", got.Score)
			}
		})
	}
}

func TestAnalyze_KeywordsCappedAtFive(t *testing.T) {
	a := NewAnalyzer()

	r := a.Analyze("delicious tasty fresh good excellent amazing wonderful food")
	if len(r.Keywords) != 5 {
		t.Fatalf("got %d keywords, want 5", len(r.Keywords))
	}
}

func TestAnalyze_AspectsGatedOnTerms(t *testing.T) {
	a := NewAnalyzer()

	r := a.Analyze("The food was delicious but a bit expensive for the price.")
	if _, ok := r.Aspects["food_quality"]; !ok {
		t.Fatal("food_quality aspect expected")
	}
	if _, ok := r.Aspects["value"]; !ok {
		t.Fatal("value aspect expected")
	}
	if _, ok := r.Aspects["service"]; ok {
		t.Fatal("service aspect must not appear without service terms")
	}
}

func TestAnalyzeBatch_PreservesOrderAndIDs(t *testing.T) {
	a := NewAnalyzer()

	reviews := []Review{
		{ReviewID: "r1", DishID: "rice", Text: "delicious food"},
		{ReviewID: "r2", Text: "awful and cold"},
	}
	results := a.AnalyzeBatch(reviews)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].ReviewID != "r1" || results[0].DishID != "rice" {
		t.Fatalf("result 0 = %+v", results[0])
	}
	if results[0].Sentiment.Sentiment != "positive" || results[1].Sentiment.Sentiment != "negative" {
		t.Fatalf("sentiments = %s, %s", results[0].Sentiment.Sentiment, results[1].Sentiment.Sentiment)
	}
}

func TestInsights_AggregationAndDistribution(t *testing.T) {
	a := NewAnalyzer()

	reviews := []Review{
		{ReviewID: "1", Text: "delicious and fresh food"},
		{ReviewID: "2", Text: "great quality, love it"},
		{ReviewID: "3", Text: "awful, cold and stale"},
		{ReviewID: "4", Text: "nothing special to report"},
	}

	insights := a.Insights("canteen-1", reviews)
	if insights.TotalReviews != 4 {
		t.Fatalf("TotalReviews = %d, want 4", insights.TotalReviews)
	}
	d := insights.Distribution
	if d["positive"] != 2 || d["negative"] != 1 || d["neutral"] != 1 {
		t.Fatalf("distribution = %v", d)
	}
	if insights.OverallSentiment != "positive" {
		t.Fatalf("overall = %s, want positive", insights.OverallSentiment)
	}
	if len(insights.TopPositiveKeywords) == 0 {
		t.Fatal("expected positive keywords")
	}
	for _, kw := range insights.TopNegativeKeywords {
		if isPositiveWord(kw) {
			t.Fatalf("positive word %q in negative keywords", kw)
		}
	}
}

func TestInsights_TrendingNeedsTenReviews(t *testing.T) {
	a := NewAnalyzer()

	// 前 5 条负面，后 5 条正面：评论按时间序传入
	reviews := make([]Review, 0, 10)
	for i := 0; i < 5; i++ {
		reviews = append(reviews, Review{Text: "awful terrible disgusting"})
	}
	for i := 0; i < 5; i++ {
		reviews = append(reviews, Review{Text: "delicious fresh wonderful"})
	}

	insights := a.Insights("canteen-2", reviews)
	if insights.Trending != "improving" {
		t.Fatalf("trending = %s, want improving", insights.Trending)
	}

	// 少于 10 条时不判趋势
	short := a.Insights("canteen-3", reviews[:9])
	if short.Trending != "stable" {
		t.Fatalf("trending with 9 reviews = %s, want stable", short.Trending)
	}
}

func TestInsights_CacheServedWhenNoReviews(t *testing.T) {
	a := NewAnalyzer()

	reviews := []Review{
		{Text: "delicious food"},
		{Text: "great quality"},
	}
	first := a.Insights("canteen-1", reviews)

	cached := a.Insights("canteen-1", nil)
	if cached != first {
		t.Fatal("expected the cached insights instance")
	}

	// 无缓存的食堂返回中性兜底
	cold := a.Insights("canteen-unknown", nil)
	if cold.OverallSentiment != "neutral" || cold.Note == "" {
		t.Fatalf("cold insights = %+v", cold)
	}
}
