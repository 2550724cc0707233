package forecast

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/canteenhub/predictkit/core"
	"github.com/canteenhub/predictkit/store"
)

func dailyRecords(dishID string, start time.Time, quantities []float64) []Record {
	records := make([]Record, 0, len(quantities))
	for i, q := range quantities {
		records = append(records, Record{
			Date:     start.AddDate(0, 0, i),
			DishID:   dishID,
			Quantity: q,
		})
	}
	return records
}

func weeklyPattern(weeks int, base []float64) []float64 {
	out := make([]float64, 0, weeks*len(base))
	for w := 0; w < weeks; w++ {
		out = append(out, base...)
	}
	return out
}

func TestForecasterTrain_InsufficientData(t *testing.T) {
	f := NewForecaster(context.Background(), nil, nil)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := dailyRecords("rice", start, weeklyPattern(1, []float64{20, 22, 21, 25, 30, 12, 10}))

	_, err := f.Train(context.Background(), "canteen-1", records)
	if !core.IsInsufficientData(err) {
		t.Fatalf("expected INSUFFICIENT_DATA for 7 records, got %v", err)
	}
}

func TestForecasterPredict_FallbackWithoutModel(t *testing.T) {
	f := NewForecaster(context.Background(), nil, nil)

	fc := f.Predict(context.Background(), "nowhere", "rice", 7)
	if len(fc.Predictions) != 7 {
		t.Fatalf("got %d predictions, want 7", len(fc.Predictions))
	}
	for _, p := range fc.Predictions {
		if p.Quantity != 20 || p.Lower != 15 || p.Upper != 25 {
			t.Fatalf("fallback prediction = %+v, want 20 [15, 25]", p)
		}
	}
	if fc.Insights.Trend != "unknown" || fc.Insights.TotalForecast != 140 {
		t.Fatalf("fallback insights = %+v", fc.Insights)
	}
	if fc.Insights.Note == "" {
		t.Fatal("fallback must carry a note")
	}
}

func TestForecasterPredict_TrainedDish(t *testing.T) {
	ctx := context.Background()
	f := NewForecaster(ctx, nil, nil)

	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC) // 周一
	base := []float64{20, 22, 21, 25, 30, 12, 10}        // 周五最高
	records := dailyRecords("rice", start, weeklyPattern(4, base))

	summary, err := f.Train(ctx, "canteen-1", records)
	if err != nil {
		t.Fatal(err)
	}
	if summary.DishesTrained != 1 {
		t.Fatalf("DishesTrained = %d, want 1", summary.DishesTrained)
	}

	fc := f.Predict(ctx, "canteen-1", "rice", 7)
	if len(fc.Predictions) != 7 {
		t.Fatalf("got %d predictions, want 7", len(fc.Predictions))
	}

	lastDate := start.AddDate(0, 0, len(records)-1)
	for i, p := range fc.Predictions {
		wantDate := lastDate.AddDate(0, 0, i+1).Format("2006-01-02")
		if p.Date != wantDate {
			t.Fatalf("prediction %d date = %s, want %s", i, p.Date, wantDate)
		}
		if p.Quantity < 0 {
			t.Fatalf("prediction %d is negative: %d", i, p.Quantity)
		}
		if p.Lower > p.Quantity || p.Upper < p.Quantity {
			t.Fatalf("interval [%d, %d] does not contain %d", p.Lower, p.Upper, p.Quantity)
		}
	}

	if fc.Insights.PeakDay != "Friday" {
		t.Fatalf("peak day = %s, want Friday", fc.Insights.PeakDay)
	}
	if fc.Insights.Trend != "stable" {
		t.Fatalf("flat weekly pattern: trend = %s, want stable", fc.Insights.Trend)
	}
}

func TestForecasterPredict_TrendDetection(t *testing.T) {
	ctx := context.Background()
	f := NewForecaster(ctx, nil, nil)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	// 前一周 10/天，最后一周 20/天：明显上升
	quantities := append(weeklyPattern(1, []float64{10, 10, 10, 10, 10, 10, 10}),
		weeklyPattern(1, []float64{20, 20, 20, 20, 20, 20, 20})...)

	if _, err := f.Train(ctx, "canteen-1", dailyRecords("tea", start, quantities)); err != nil {
		t.Fatal(err)
	}

	fc := f.Predict(ctx, "canteen-1", "tea", 7)
	if fc.Insights.Trend != "increasing" {
		t.Fatalf("trend = %s, want increasing", fc.Insights.Trend)
	}
}

func TestForecasterPredict_MissingDaysResampledToZero(t *testing.T) {
	ctx := context.Background()
	f := NewForecaster(ctx, nil, nil)

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	records := dailyRecords("rice", start, weeklyPattern(4, []float64{20, 20, 20, 20, 20, 20, 20}))
	// 抠掉中间一天：重采样应补 0 而不是缩短序列
	records = append(records[:10], records[11:]...)

	if _, err := f.Train(ctx, "canteen-1", records); err != nil {
		t.Fatal(err)
	}

	f.mu.RLock()
	ds := f.canteens["canteen-1"]["rice"]
	f.mu.RUnlock()
	if len(ds.Series) != 28 {
		t.Fatalf("series length = %d, want 28 (missing day filled)", len(ds.Series))
	}
	if ds.Series[10] != 0 {
		t.Fatalf("missing day = %v, want 0", ds.Series[10])
	}
}

func TestForecaster_PersistenceRoundtrip(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()

	f := NewForecaster(ctx, s, nil)
	start := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	records := dailyRecords("rice", start, weeklyPattern(4, []float64{20, 22, 21, 25, 30, 12, 10}))
	if _, err := f.Train(ctx, "canteen-1", records); err != nil {
		t.Fatal(err)
	}
	want := f.Predict(ctx, "canteen-1", "rice", 7)

	// 重启后从同一 Store 恢复并重新拟合
	restarted := NewForecaster(ctx, s, nil)
	got := restarted.Predict(ctx, "canteen-1", "rice", 7)

	if len(got.Predictions) != len(want.Predictions) {
		t.Fatalf("after restart got %d predictions, want %d", len(got.Predictions), len(want.Predictions))
	}
	for i := range want.Predictions {
		if got.Predictions[i] != want.Predictions[i] {
			t.Fatalf("restart differs at %d: %+v vs %+v", i, got.Predictions[i], want.Predictions[i])
		}
	}
}

func TestHoltWinters_SeasonalSignalTracked(t *testing.T) {
	base := []float64{20, 22, 21, 25, 30, 12, 10}
	series := weeklyPattern(6, base)

	hw, err := fitHoltWinters(series, SeasonLength)
	if err != nil {
		t.Fatal(err)
	}

	forecast := hw.Forecast(7)
	// 纯周期序列：预测应大致复现周期形状，峰值位置一致
	peakIdx := 0
	for i, v := range forecast {
		if v > forecast[peakIdx] {
			peakIdx = i
		}
	}
	if peakIdx != 4 {
		t.Fatalf("forecast peak at offset %d, want 4 (Friday slot)", peakIdx)
	}
	for i, v := range forecast {
		if math.Abs(v-base[i]) > 5 {
			t.Fatalf("forecast[%d] = %v too far from seasonal value %v", i, v, base[i])
		}
	}
}

func TestHoltWinters_TooShortSeries(t *testing.T) {
	if _, err := fitHoltWinters([]float64{1, 2, 3}, SeasonLength); err == nil {
		t.Fatal("expected error for series shorter than two seasons")
	}
}
