package forecast

import "fmt"

// holtWinters 是加法形式的三次指数平滑（Holt-Winters additive）。
// 季节周期固定为一周（7 天），适合食堂按日出餐量的周期性。
type holtWinters struct {
	level     float64
	trend     float64
	seasonals []float64
	period    int
	n         int // 拟合时的序列长度，预测时用于定位季节相位
}

// fitHoltWinters 用网格搜索拟合平滑参数，最小化单步预测误差平方和。
// 搜索网格固定且有序，同一序列的拟合结果完全确定。
// 序列长度不足两个完整周期时返回错误，调用方降级到移动平均。
func fitHoltWinters(series []float64, period int) (*holtWinters, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(series) < 2*period {
		return nil, fmt.Errorf("need at least %d points, got %d", 2*period, len(series))
	}

	grid := []float64{0.1, 0.3, 0.5, 0.7, 0.9}

	var best *holtWinters
	bestSSE := 0.0
	for _, alpha := range grid {
		for _, beta := range grid {
			for _, gamma := range grid {
				hw, sse := smooth(series, period, alpha, beta, gamma)
				if best == nil || sse < bestSSE {
					best = hw
					bestSSE = sse
				}
			}
		}
	}
	return best, nil
}

// smooth 执行一遍平滑，返回末态与单步预测 SSE。
func smooth(series []float64, period int, alpha, beta, gamma float64) (*holtWinters, float64) {
	level := mean(series[:period])
	trend := initialTrend(series, period)
	seasonals := initialSeasonals(series, period)

	var sse float64
	for i := period; i < len(series); i++ {
		value := series[i]
		si := i % period

		predicted := level + trend + seasonals[si]
		diff := value - predicted
		sse += diff * diff

		lastLevel := level
		level = alpha*(value-seasonals[si]) + (1-alpha)*(level+trend)
		trend = beta*(level-lastLevel) + (1-beta)*trend
		seasonals[si] = gamma*(value-level) + (1-gamma)*seasonals[si]
	}

	return &holtWinters{
		level:     level,
		trend:     trend,
		seasonals: seasonals,
		period:    period,
		n:         len(series),
	}, sse
}

// Forecast 外推 h 步，返回各步的点预测。
func (hw *holtWinters) Forecast(h int) []float64 {
	out := make([]float64, h)
	for i := 0; i < h; i++ {
		out[i] = hw.level + float64(i+1)*hw.trend + hw.seasonals[(hw.n+i)%hw.period]
	}
	return out
}

// initialTrend 用前两个周期的平均日差分估计初始趋势。
func initialTrend(series []float64, period int) float64 {
	var sum float64
	for i := 0; i < period; i++ {
		sum += (series[period+i] - series[i]) / float64(period)
	}
	return sum / float64(period)
}

// initialSeasonals 用各周期的去均值残差估计初始季节分量。
func initialSeasonals(series []float64, period int) []float64 {
	nSeasons := len(series) / period

	seasonAvgs := make([]float64, nSeasons)
	for s := 0; s < nSeasons; s++ {
		seasonAvgs[s] = mean(series[s*period : (s+1)*period])
	}

	seasonals := make([]float64, period)
	for i := 0; i < period; i++ {
		var sum float64
		for s := 0; s < nSeasons; s++ {
			sum += series[s*period+i] - seasonAvgs[s]
		}
		seasonals[i] = sum / float64(nSeasons)
	}
	return seasonals
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
