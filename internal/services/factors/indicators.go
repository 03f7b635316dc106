package factors

import "math"

// Indicator primitives over plain float64 slices. Each function returns
// one output per input bar; entries without sufficient lookback are
// reported through the parallel ok slice, never as zero.

// PctChange computes the percentage change over an n-period lookback.
// out[i] compares x[i] against x[i-n].
func PctChange(x []float64, n int) (out []float64, ok []bool) {
	out = make([]float64, len(x))
	ok = make([]bool, len(x))
	for i := n; i < len(x); i++ {
		base := x[i-n]
		if base == 0 {
			continue
		}
		out[i] = (x[i] - base) / base * 100
		ok[i] = true
	}
	return out, ok
}

// VolumeMomentum compares the average volume of the latest w bars
// against the average of the w bars preceding them, as a percentage.
func VolumeMomentum(volumes []float64, w int) (out []float64, ok []bool) {
	out = make([]float64, len(volumes))
	ok = make([]bool, len(volumes))
	if w <= 0 {
		return out, ok
	}
	for i := 2*w - 1; i < len(volumes); i++ {
		var recent, baseline float64
		for j := i - w + 1; j <= i; j++ {
			recent += volumes[j]
		}
		for j := i - 2*w + 1; j <= i-w; j++ {
			baseline += volumes[j]
		}
		recent /= float64(w)
		baseline /= float64(w)
		if baseline == 0 {
			continue
		}
		out[i] = (recent - baseline) / baseline * 100
		ok[i] = true
	}
	return out, ok
}

// RSI computes the Relative Strength Index with Wilder's smoothing,
// scaled 0-100. The first defined value is at index w.
func RSI(closes []float64, w int) (out []float64, ok []bool) {
	out = make([]float64, len(closes))
	ok = make([]bool, len(closes))
	if w <= 0 || len(closes) <= w {
		return out, ok
	}

	var avgGain, avgLoss float64
	for i := 1; i <= w; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss += -d
		}
	}
	avgGain /= float64(w)
	avgLoss /= float64(w)
	out[w] = rsiFromAverages(avgGain, avgLoss)
	ok[w] = true

	for i := w + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*float64(w-1) + gain) / float64(w)
		avgLoss = (avgLoss*float64(w-1) + loss) / float64(w)
		out[i] = rsiFromAverages(avgGain, avgLoss)
		ok[i] = true
	}
	return out, ok
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// EMA computes an exponential moving average seeded with the simple
// average of the first n values. The first defined value is at n-1.
func EMA(x []float64, n int) (out []float64, ok []bool) {
	out = make([]float64, len(x))
	ok = make([]bool, len(x))
	if n <= 0 || len(x) < n {
		return out, ok
	}
	var seed float64
	for i := 0; i < n; i++ {
		seed += x[i]
	}
	seed /= float64(n)
	out[n-1] = seed
	ok[n-1] = true

	alpha := 2.0 / (float64(n) + 1)
	prev := seed
	for i := n; i < len(x); i++ {
		prev = alpha*x[i] + (1-alpha)*prev
		out[i] = prev
		ok[i] = true
	}
	return out, ok
}

// MACD computes the fast/slow EMA difference and its signal line.
// The MACD line is defined from index slow-1; the signal line needs a
// further sig periods of MACD history.
func MACD(closes []float64, fast, slow, sig int) (macd, signal []float64, macdOK, sigOK []bool) {
	macd = make([]float64, len(closes))
	signal = make([]float64, len(closes))
	macdOK = make([]bool, len(closes))
	sigOK = make([]bool, len(closes))
	if fast <= 0 || slow <= fast || sig <= 0 || len(closes) < slow {
		return macd, signal, macdOK, sigOK
	}

	fastEMA, fastDef := EMA(closes, fast)
	slowEMA, slowDef := EMA(closes, slow)
	for i := range closes {
		if fastDef[i] && slowDef[i] {
			macd[i] = fastEMA[i] - slowEMA[i]
			macdOK[i] = true
		}
	}

	// Signal line: EMA over the defined portion of the MACD line.
	start := slow - 1
	if start >= len(closes) {
		return macd, signal, macdOK, sigOK
	}
	sigEMA, sigDef := EMA(macd[start:], sig)
	for i := range sigEMA {
		if sigDef[i] {
			signal[start+i] = sigEMA[i]
			sigOK[start+i] = true
		}
	}
	return macd, signal, macdOK, sigOK
}

// BollingerPosition computes (close - SMA) / (k * stddev) over a w-bar
// window. A zero-variance window leaves the value undefined.
func BollingerPosition(closes []float64, w int, k float64, clip bool) (out []float64, ok []bool) {
	out = make([]float64, len(closes))
	ok = make([]bool, len(closes))
	if w <= 1 || k <= 0 {
		return out, ok
	}
	for i := w - 1; i < len(closes); i++ {
		var sum, sum2 float64
		for j := i - w + 1; j <= i; j++ {
			sum += closes[j]
			sum2 += closes[j] * closes[j]
		}
		n := float64(w)
		mean := sum / n
		variance := (sum2 - n*mean*mean) / (n - 1)
		if variance <= 0 {
			continue
		}
		pos := (closes[i] - mean) / (k * math.Sqrt(variance))
		if clip {
			pos = math.Max(-1, math.Min(1, pos))
		}
		out[i] = pos
		ok[i] = true
	}
	return out, ok
}

// SimpleReturns computes r_t = C_t/C_{t-1} - 1 over a close series.
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func SimpleReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, closes[i]/prev-1)
	}
	return out
}

// LogReturns computes r_t = ln(C_t / C_{t-1}) over a close series.
// It returns a slice of length len(closes)-1, or nil if insufficient data.
func LogReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		cur := closes[i]
		if prev <= 0 || cur <= 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, math.Log(cur/prev))
	}
	return out
}
