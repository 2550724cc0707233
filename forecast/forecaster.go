package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/canteenhub/predictkit/core"
)

// SeasonLength 是季节周期：食堂出餐量以周为周期波动。
const SeasonLength = 7

// MinPoints 是单个菜品训练需求预测所需的最少按日数据点数。
const MinPoints = 14

// DefaultModelKey 是预测模型在 Store 中的默认持久化 key。
const DefaultModelKey = "forecast:model"

// Record 是一条按日聚合前的历史出餐记录。
type Record struct {
	Date     time.Time `json:"date"`
	DishID   string    `json:"dish_id"`
	Quantity float64   `json:"quantity"`
}

// Prediction 是单日的需求预测。
type Prediction struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Quantity int    `json:"predicted_quantity"`
	Lower    int    `json:"lower_bound"`
	Upper    int    `json:"upper_bound"`
}

// Insights 是预测的辅助解读。
type Insights struct {
	Trend             string  `json:"trend"` // increasing / decreasing / stable / unknown
	PeakDay           string  `json:"peak_day"`
	AverageDaily      float64 `json:"average_daily"`
	TotalForecast     int     `json:"total_forecast"`
	HistoricalAverage float64 `json:"historical_average,omitempty"`
	Note              string  `json:"note,omitempty"`
}

// Forecast 是一个菜品的完整预测结果。
type Forecast struct {
	Predictions []Prediction `json:"predictions"`
	Insights    Insights     `json:"insights"`
}

// TrainSummary 汇总一次训练的结果。
type TrainSummary struct {
	CanteenID     string `json:"canteen_id"`
	DishesTrained int    `json:"dishes_trained"`
	DataPoints    int    `json:"data_points"`
}

// dishSeries 持有一个菜品按日重采样后的序列与拟合好的模型。
// model 为 nil 表示 Holt-Winters 拟合失败，预测时退化为近一周移动平均。
type dishSeries struct {
	Series   []float64 `json:"series"`
	LastDate time.Time `json:"last_date"`
	model    *holtWinters
}

// Forecaster 是按食堂、按菜品的需求预测服务。
//
// 每个菜品独立拟合一个周季节性的 Holt-Winters 模型；序列太短或
// 拟合失败时逐级降级：近一周移动平均，再到固定兜底值。
// 持久化只保存重采样后的序列，加载时重新拟合，保证模型和序列一致。
type Forecaster struct {
	Store  core.Store
	Key    string
	Logger *slog.Logger

	mu       sync.RWMutex
	canteens map[string]map[string]*dishSeries
}

// NewForecaster 创建 Forecaster 并尝试从 Store 恢复历史序列。
// 恢复失败只记日志，服务以空状态启动。
func NewForecaster(ctx context.Context, store core.Store, logger *slog.Logger) *Forecaster {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Forecaster{
		Store:    store,
		Key:      DefaultModelKey,
		Logger:   logger,
		canteens: make(map[string]map[string]*dishSeries),
	}
	f.load(ctx)
	return f
}

// Train 为一个食堂训练需求预测模型。
// 总数据点少于 MinPoints 时返回 INSUFFICIENT_DATA，原有模型保持不变。
func (f *Forecaster) Train(ctx context.Context, canteenID string, records []Record) (TrainSummary, error) {
	summary := TrainSummary{CanteenID: canteenID, DataPoints: len(records)}

	if len(records) < MinPoints {
		return summary, core.NewDomainError(
			core.ModuleForecast,
			core.ErrorCodeInsufficientData,
			fmt.Sprintf("need at least %d days of data, got %d", MinPoints, len(records)),
		)
	}

	byDish := make(map[string][]Record)
	for _, r := range records {
		if r.DishID == "" || r.Date.IsZero() {
			continue
		}
		byDish[r.DishID] = append(byDish[r.DishID], r)
	}

	trained := make(map[string]*dishSeries, len(byDish))
	for dishID, rs := range byDish {
		ds := resampleDaily(rs)
		if len(ds.Series) < MinPoints {
			continue
		}
		model, err := fitHoltWinters(ds.Series, SeasonLength)
		if err != nil {
			// 降级为移动平均
			f.Logger.Warn("holt-winters fit failed, falling back to moving average",
				"canteen_id", canteenID, "dish_id", dishID, "error", err)
		} else {
			ds.model = model
		}
		trained[dishID] = ds
	}

	f.mu.Lock()
	f.canteens[canteenID] = trained
	f.mu.Unlock()

	summary.DishesTrained = len(trained)

	if err := f.save(ctx); err != nil {
		f.Logger.Warn("persist forecast series failed, serving from memory only", "error", err)
	}

	f.Logger.Info("forecast models trained",
		"canteen_id", canteenID,
		"dishes_trained", summary.DishesTrained,
		"data_points", summary.DataPoints)
	return summary, nil
}

// Predict 预测一个菜品未来 daysAhead 天的需求。
// 食堂或菜品没有模型时返回固定兜底预测，不报错。
func (f *Forecaster) Predict(ctx context.Context, canteenID, dishID string, daysAhead int) *Forecast {
	if daysAhead <= 0 {
		daysAhead = SeasonLength
	}

	f.mu.RLock()
	ds := f.canteens[canteenID][dishID]
	f.mu.RUnlock()

	if ds == nil {
		return fallbackForecast(daysAhead)
	}
	return predictDish(ds, daysAhead)
}

// PredictDemand 是带可选现场训练的预测入口。
// historical 数据量达到训练门槛时先训练再预测；dishID 为空时预测全部菜品。
func (f *Forecaster) PredictDemand(ctx context.Context, canteenID, dishID string, daysAhead int, historical []Record) (map[string]*Forecast, error) {
	if len(historical) >= MinPoints {
		if _, err := f.Train(ctx, canteenID, historical); err != nil {
			return nil, err
		}
	}

	if dishID != "" {
		return map[string]*Forecast{dishID: f.Predict(ctx, canteenID, dishID, daysAhead)}, nil
	}
	all := f.PredictAll(ctx, canteenID, daysAhead)
	if len(all) == 0 {
		// 整个食堂都没有模型：给出单份兜底，调用方无需区分
		return map[string]*Forecast{"default": fallbackForecast(daysAhead)}, nil
	}
	return all, nil
}

// PredictAll 预测一个食堂所有已训练菜品的需求。
// 食堂没有模型时返回空 map。
func (f *Forecaster) PredictAll(ctx context.Context, canteenID string, daysAhead int) map[string]*Forecast {
	if daysAhead <= 0 {
		daysAhead = SeasonLength
	}

	f.mu.RLock()
	dishes := f.canteens[canteenID]
	ids := make([]string, 0, len(dishes))
	for id := range dishes {
		ids = append(ids, id)
	}
	f.mu.RUnlock()

	sort.Strings(ids)
	out := make(map[string]*Forecast, len(ids))
	for _, id := range ids {
		f.mu.RLock()
		ds := f.canteens[canteenID][id]
		f.mu.RUnlock()
		if ds != nil {
			out[id] = predictDish(ds, daysAhead)
		}
	}
	return out
}

func predictDish(ds *dishSeries, daysAhead int) *Forecast {
	var values []float64
	if ds.model != nil {
		values = ds.model.Forecast(daysAhead)
	} else {
		// 近一周移动平均
		window := ds.Series
		if len(window) > SeasonLength {
			window = window[len(window)-SeasonLength:]
		}
		avg := mean(window)
		values = make([]float64, daysAhead)
		for i := range values {
			values[i] = avg
		}
	}

	predictions := make([]Prediction, daysAhead)
	for i := 0; i < daysAhead; i++ {
		qty := int(math.Round(values[i]))
		if qty < 0 {
			qty = 0
		}
		lower := int(float64(qty) * 0.8)
		if lower < 0 {
			lower = 0
		}
		predictions[i] = Prediction{
			Date:     ds.LastDate.AddDate(0, 0, i+1).Format("2006-01-02"),
			Quantity: qty,
			Lower:    lower,
			Upper:    int(float64(qty) * 1.2),
		}
	}

	return &Forecast{
		Predictions: predictions,
		Insights:    calculateInsights(ds, predictions),
	}
}

func calculateInsights(ds *dishSeries, predictions []Prediction) Insights {
	series := ds.Series

	// 趋势：近一周均值与前一周均值比较，阈值 ±10%
	recentAvg := mean(tail(series, SeasonLength))
	olderAvg := recentAvg
	if len(series) >= 2*SeasonLength {
		older := series[len(series)-2*SeasonLength : len(series)-SeasonLength]
		olderAvg = mean(older)
	}
	trend := "stable"
	switch {
	case recentAvg > olderAvg*1.1:
		trend = "increasing"
	case recentAvg < olderAvg*0.9:
		trend = "decreasing"
	}

	// 峰值日：历史上平均需求最高的星期几
	var daySums [7]float64
	var dayCounts [7]int
	for i, v := range series {
		// LastDate 对应序列末位，回推各点的星期几
		d := ds.LastDate.AddDate(0, 0, -(len(series) - 1 - i))
		w := int(d.Weekday())
		daySums[w] += v
		dayCounts[w]++
	}
	peakIdx, peakAvg := -1, math.Inf(-1)
	for w := 0; w < 7; w++ {
		if dayCounts[w] == 0 {
			continue
		}
		avg := daySums[w] / float64(dayCounts[w])
		if avg > peakAvg {
			peakAvg = avg
			peakIdx = w
		}
	}
	peakDay := "unknown"
	if peakIdx >= 0 {
		peakDay = time.Weekday(peakIdx).String()
	}

	total := 0
	for _, p := range predictions {
		total += p.Quantity
	}
	avgDaily := 0.0
	if len(predictions) > 0 {
		avgDaily = math.Round(float64(total)/float64(len(predictions))*10) / 10
	}

	return Insights{
		Trend:             trend,
		PeakDay:           peakDay,
		AverageDaily:      avgDaily,
		TotalForecast:     total,
		HistoricalAverage: math.Round(mean(series)*10) / 10,
	}
}

// fallbackForecast 是没有任何模型时的固定兜底。
func fallbackForecast(daysAhead int) *Forecast {
	now := time.Now()
	predictions := make([]Prediction, daysAhead)
	for i := 0; i < daysAhead; i++ {
		predictions[i] = Prediction{
			Date:     now.AddDate(0, 0, i+1).Format("2006-01-02"),
			Quantity: 20,
			Lower:    15,
			Upper:    25,
		}
	}
	return &Forecast{
		Predictions: predictions,
		Insights: Insights{
			Trend:         "unknown",
			PeakDay:       "unknown",
			AverageDaily:  20,
			TotalForecast: 20 * daysAhead,
			Note:          "using default values, insufficient historical data",
		},
	}
}

// resampleDaily 把记录聚合为按日连续序列，缺失日补 0。
func resampleDaily(records []Record) *dishSeries {
	byDay := make(map[string]float64)
	var first, last time.Time
	for _, r := range records {
		day := r.Date.Truncate(24 * time.Hour)
		key := day.Format("2006-01-02")
		byDay[key] += r.Quantity
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
	}

	days := int(last.Sub(first).Hours()/24) + 1
	series := make([]float64, 0, days)
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		series = append(series, byDay[d.Format("2006-01-02")])
	}
	return &dishSeries{Series: series, LastDate: last}
}

func tail(xs []float64, n int) []float64 {
	if len(xs) > n {
		return xs[len(xs)-n:]
	}
	return xs
}

// persisted 是序列化到 Store 的格式。只存序列，加载时重新拟合。
type persisted struct {
	Version  int                                   `json:"version"`
	Canteens map[string]map[string]*dishSeriesBlob `json:"canteens"`
}

type dishSeriesBlob struct {
	Series   []float64 `json:"series"`
	LastDate time.Time `json:"last_date"`
}

func (f *Forecaster) save(ctx context.Context) error {
	if f.Store == nil {
		return nil
	}

	f.mu.RLock()
	blob := persisted{Version: 1, Canteens: make(map[string]map[string]*dishSeriesBlob, len(f.canteens))}
	for canteenID, dishes := range f.canteens {
		m := make(map[string]*dishSeriesBlob, len(dishes))
		for dishID, ds := range dishes {
			m[dishID] = &dishSeriesBlob{Series: ds.Series, LastDate: ds.LastDate}
		}
		blob.Canteens[canteenID] = m
	}
	f.mu.RUnlock()

	data, err := json.Marshal(blob)
	if err != nil {
		return err
	}
	return f.Store.Set(ctx, f.Key, data)
}

func (f *Forecaster) load(ctx context.Context) {
	if f.Store == nil {
		return
	}

	data, err := f.Store.Get(ctx, f.Key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			f.Logger.Warn("load forecast series failed, starting empty", "error", err)
		}
		return
	}

	var blob persisted
	if err := json.Unmarshal(data, &blob); err != nil {
		f.Logger.Warn("decode forecast series failed, starting empty", "error", err)
		return
	}

	canteens := make(map[string]map[string]*dishSeries, len(blob.Canteens))
	for canteenID, dishes := range blob.Canteens {
		m := make(map[string]*dishSeries, len(dishes))
		for dishID, b := range dishes {
			ds := &dishSeries{Series: b.Series, LastDate: b.LastDate}
			if len(ds.Series) >= MinPoints {
				if model, err := fitHoltWinters(ds.Series, SeasonLength); err == nil {
					ds.model = model
				}
			}
			m[dishID] = ds
		}
		canteens[canteenID] = m
	}

	f.mu.Lock()
	f.canteens = canteens
	f.mu.Unlock()

	f.Logger.Info("forecast series restored", "canteens", len(canteens))
}
