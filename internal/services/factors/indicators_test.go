package factors

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestPctChangeLookback(t *testing.T) {
	x := []float64{100, 110, 121}
	out, ok := PctChange(x, 1)
	if ok[0] {
		t.Fatalf("index 0 should be undefined")
	}
	if !ok[1] || !almostEqual(out[1], 10, 1e-9) {
		t.Fatalf("want 10%%, got %v defined=%v", out[1], ok[1])
	}
	if !ok[2] || !almostEqual(out[2], 10, 1e-9) {
		t.Fatalf("want 10%%, got %v", out[2])
	}
}

func TestPctChangeInsufficientHistory(t *testing.T) {
	x := []float64{100, 101}
	_, ok := PctChange(x, 5)
	for i, defined := range ok {
		if defined {
			t.Fatalf("index %d should be undefined with 2 bars and lookback 5", i)
		}
	}
}

func TestVolumeMomentumFirstDefinedIndex(t *testing.T) {
	vols := []float64{10, 10, 10, 20, 20, 20}
	out, ok := VolumeMomentum(vols, 3)
	for i := 0; i < 5; i++ {
		if ok[i] {
			t.Fatalf("index %d should be undefined", i)
		}
	}
	if !ok[5] || !almostEqual(out[5], 100, 1e-9) {
		t.Fatalf("want +100%%, got %v defined=%v", out[5], ok[5])
	}
}

func TestRSIAllGains(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	out, ok := RSI(closes, 5)
	for i := 0; i < 5; i++ {
		if ok[i] {
			t.Fatalf("index %d should be undefined", i)
		}
	}
	if !ok[5] || out[5] != 100 {
		t.Fatalf("monotone gains should give RSI 100, got %v", out[5])
	}
}

func TestRSIFlatSeries(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5, 5}
	out, ok := RSI(closes, 3)
	if !ok[3] || out[3] != 50 {
		t.Fatalf("flat series should give RSI 50, got %v defined=%v", out[3], ok[3])
	}
}

func TestRSIWilderSmoothing(t *testing.T) {
	closes := []float64{10, 11, 10, 11, 10, 11}
	out, ok := RSI(closes, 2)
	// seed: gains (1), losses (1) over first 2 deltas -> RS=1 -> RSI 50
	if !ok[2] || !almostEqual(out[2], 50, 1e-9) {
		t.Fatalf("want seed RSI 50, got %v", out[2])
	}
	// next delta +1: avgGain=(0.5*1+1)/2=0.75 avgLoss=0.25 -> RSI 75
	if !almostEqual(out[3], 75, 1e-9) {
		t.Fatalf("want RSI 75 after smoothing, got %v", out[3])
	}
}

func TestEMASeedAndAlpha(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	out, ok := EMA(x, 3)
	if ok[0] || ok[1] {
		t.Fatalf("ema should be undefined before n-1")
	}
	if !ok[2] || !almostEqual(out[2], 2, 1e-9) {
		t.Fatalf("seed should be SMA(1,2,3)=2, got %v", out[2])
	}
	// alpha = 0.5: 0.5*4 + 0.5*2 = 3
	if !almostEqual(out[3], 3, 1e-9) {
		t.Fatalf("want 3, got %v", out[3])
	}
}

func TestMACDDefinition(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	macd, signal, macdOK, sigOK := MACD(closes, 3, 6, 4)
	if macdOK[4] {
		t.Fatalf("macd should be undefined before slow-1")
	}
	if !macdOK[5] {
		t.Fatalf("macd should be defined at slow-1")
	}
	if sigOK[7] {
		t.Fatalf("signal needs sig periods of macd history")
	}
	if !sigOK[8] {
		t.Fatalf("signal should be defined at slow-1+sig-1")
	}
	// uptrend: fast EMA above slow EMA
	if macd[20] <= 0 {
		t.Fatalf("uptrend macd should be positive, got %v", macd[20])
	}
	if signal[20] <= 0 {
		t.Fatalf("uptrend signal should be positive, got %v", signal[20])
	}
}

func TestBollingerZeroVarianceUndefined(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5}
	_, ok := BollingerPosition(closes, 3, 2, false)
	for i, defined := range ok {
		if defined {
			t.Fatalf("index %d should be undefined on flat window", i)
		}
	}
}

func TestBollingerUnclippedCanExceedOne(t *testing.T) {
	closes := []float64{10, 10.1, 9.9, 10, 50}
	out, ok := BollingerPosition(closes, 5, 2, false)
	if !ok[4] {
		t.Fatalf("expected defined position")
	}
	if out[4] <= 1 {
		t.Fatalf("spike should push position above +1 without clipping, got %v", out[4])
	}
	clipped, _ := BollingerPosition(closes, 5, 2, true)
	if clipped[4] != 1 {
		t.Fatalf("clipped position should be 1, got %v", clipped[4])
	}
}

func TestSimpleAndLogReturns(t *testing.T) {
	closes := []float64{100, 110, 99}
	simple := SimpleReturns(closes)
	if len(simple) != 2 {
		t.Fatalf("want 2 returns, got %d", len(simple))
	}
	if !almostEqual(simple[0], 0.10, 1e-9) {
		t.Fatalf("want 0.10, got %v", simple[0])
	}
	logr := LogReturns(closes)
	if !almostEqual(logr[0], math.Log(1.1), 1e-9) {
		t.Fatalf("want ln(1.1), got %v", logr[0])
	}
	if SimpleReturns([]float64{100}) != nil {
		t.Fatalf("single close should yield nil returns")
	}
}
