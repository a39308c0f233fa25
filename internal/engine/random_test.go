package engine

import (
	"math"
	"testing"
)

func TestDeterminism(t *testing.T) {
	r1 := NewRNG(42)
	r2 := NewRNG(42)
	for i := 0; i < 1000; i++ {
		if r1.Uint32() != r2.Uint32() {
			t.Fatalf("determinism broken at iteration %d", i)
		}
	}
}

func TestDifferentSeeds(t *testing.T) {
	r1 := NewRNG(42)
	r2 := NewRNG(43)
	same := 0
	for i := 0; i < 100; i++ {
		if r1.Uint32() == r2.Uint32() {
			same++
		}
	}
	if same > 5 {
		t.Fatalf("different seeds produced %d/100 identical values", same)
	}
}

func TestFloat64Bounds(t *testing.T) {
	r := NewRNG(42)
	for i := 0; i < 10000; i++ {
		v := r.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64() = %f, out of [0, 1)", v)
		}
	}
}

func TestIntnBounds(t *testing.T) {
	r := NewRNG(42)
	for i := 0; i < 10000; i++ {
		v := r.Intn(10)
		if v < 0 || v >= 10 {
			t.Fatalf("Intn(10) = %d, out of [0, 10)", v)
		}
	}
}

func TestIntnZero(t *testing.T) {
	r := NewRNG(42)
	if r.Intn(0) != 0 {
		t.Fatal("Intn(0) should return 0")
	}
}

func TestIntnNegative(t *testing.T) {
	r := NewRNG(42)
	if r.Intn(-5) != 0 {
		t.Fatal("Intn(-5) should return 0")
	}
}

func TestIntRangeBounds(t *testing.T) {
	r := NewRNG(42)
	for i := 0; i < 10000; i++ {
		v := r.IntRange(5, 15)
		if v < 5 || v > 15 {
			t.Fatalf("IntRange(5,15) = %d, out of [5, 15]", v)
		}
	}
}

func TestIntRangeEqual(t *testing.T) {
	r := NewRNG(42)
	for i := 0; i < 100; i++ {
		v := r.IntRange(7, 7)
		if v != 7 {
			t.Fatalf("IntRange(7,7) = %d, want 7", v)
		}
	}
}

func TestIntRangeReversed(t *testing.T) {
	r := NewRNG(42)
	// When min >= max, should return min
	v := r.IntRange(10, 5)
	if v != 10 {
		t.Fatalf("IntRange(10,5) = %d, want 10", v)
	}
}

func TestGaussianStats(t *testing.T) {
	r := NewRNG(42)
	n := 50000
	sum := 0.0
	sumSq := 0.0
	for i := 0; i < n; i++ {
		v := r.Gaussian()
		sum += v
		sumSq += v * v
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean

	if math.Abs(mean) > 0.05 {
		t.Errorf("Gaussian mean = %f, expected ~0", mean)
	}
	if math.Abs(variance-1.0) > 0.1 {
		t.Errorf("Gaussian variance = %f, expected ~1", variance)
	}
}

func TestWeightedPickBounds(t *testing.T) {
	r := NewRNG(42)
	weights := []float64{1, 2, 3, 4}
	for i := 0; i < 10000; i++ {
		v := r.WeightedPick(weights)
		if v < 0 || v >= len(weights) {
			t.Fatalf("WeightedPick returned %d, out of [0, %d)", v, len(weights))
		}
	}
}

func TestWeightedPickDistribution(t *testing.T) {
	r := NewRNG(42)
	weights := []float64{0, 0, 1} // should always pick index 2
	for i := 0; i < 100; i++ {
		v := r.WeightedPick(weights)
		if v != 2 {
			t.Fatalf("WeightedPick with [0,0,1] returned %d, want 2", v)
		}
	}
}

func TestWeightedPickSingleWeight(t *testing.T) {
	r := NewRNG(42)
	weights := []float64{5}
	for i := 0; i < 100; i++ {
		v := r.WeightedPick(weights)
		if v != 0 {
			t.Fatalf("WeightedPick with single weight returned %d, want 0", v)
		}
	}
}

func TestPriceWalkFloorsAtOne(t *testing.T) {
	r := NewRNG(42)
	mid := 1.0
	for i := 0; i < 10000; i++ {
		mid = r.PriceWalk(mid, 5.0)
		if mid < 1 {
			t.Fatalf("PriceWalk produced %f, want >= 1", mid)
		}
	}
}

func TestSideBounds(t *testing.T) {
	r := NewRNG(42)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		s := r.Side()
		if s != "0" && s != "1" {
			t.Fatalf("Side() = %q, want \"0\" or \"1\"", s)
		}
		seen[s] = true
	}
	if len(seen) != 2 {
		t.Fatalf("Side() only ever produced %v over 1000 draws", seen)
	}
}

func TestQuantityIsWholeLots(t *testing.T) {
	r := NewRNG(42)
	const lotSize = int64(1_000_000)
	for i := 0; i < 1000; i++ {
		q := r.Quantity(50, lotSize)
		if q < lotSize || q > 50*lotSize {
			t.Fatalf("Quantity(50, %d) = %d, out of range", lotSize, q)
		}
		if q%lotSize != 0 {
			t.Fatalf("Quantity(50, %d) = %d, not a whole lot", lotSize, q)
		}
	}
}

func TestPickStringBounds(t *testing.T) {
	r := NewRNG(42)
	choices := []string{"a", "b", "c"}
	for i := 0; i < 1000; i++ {
		got := r.PickString(choices)
		found := false
		for _, c := range choices {
			if got == c {
				found = true
			}
		}
		if !found {
			t.Fatalf("PickString returned %q, not one of %v", got, choices)
		}
	}
}
