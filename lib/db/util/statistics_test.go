package util

import (
	"math"
	"testing"
)

// TestNewStats tests the summary statistics
func TestNewStats(t *testing.T) {
	s := NewStats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if s.Mean != 5 {
		t.Errorf("Expected mean 5, got %f", s.Mean)
	}
	if s.StdDeviation != 2 {
		t.Errorf("Expected standard deviation 2, got %f", s.StdDeviation)
	}
	if s.Min != 2 || s.Max != 9 {
		t.Errorf("Expected min 2 and max 9, got %f and %f", s.Min, s.Max)
	}

	if empty := NewStats(nil); empty != (Stats{}) {
		t.Errorf("Expected zero stats for no values, got %+v", empty)
	}
}

// TestDistributionQuality tests the quality of even and skewed distributions
func TestDistributionQuality(t *testing.T) {
	even := NewDistributionStats([]float64{10, 10, 10, 10})
	if even.DistributionQuality != 1 {
		t.Errorf("Expected quality 1 for an even distribution, got %f", even.DistributionQuality)
	}

	skewed := NewDistributionStats([]float64{0, 0, 0, 40})
	if skewed.DistributionQuality >= 0.5 {
		t.Errorf("Expected low quality for a skewed distribution, got %f", skewed.DistributionQuality)
	}
}

// TestSizeHistogram tests sampling and estimates
func TestSizeHistogram(t *testing.T) {
	h := NewSizeHistogram()
	if h.AverageSize() != 0 || h.Percentile(50) != 0 {
		t.Error("Expected zero estimates for an empty histogram")
	}

	for i := 0; i < 90; i++ {
		h.AddSample(10)
	}
	for i := 0; i < 10; i++ {
		h.AddSample(2000)
	}

	if h.Count() != 100 {
		t.Errorf("Expected 100 samples, got %d", h.Count())
	}
	if avg := h.AverageSize(); avg != (90*10+10*2000)/100 {
		t.Errorf("Expected exact average, got %d", avg)
	}
	if p := h.Percentile(50); p != 8 {
		t.Errorf("Expected median estimate 8, got %d", p)
	}
	if p := h.Percentile(99); p != (1024+4096)/2 {
		t.Errorf("Expected p99 estimate %d, got %d", (1024+4096)/2, p)
	}
	if p := h.Percentile(101); p != 0 {
		t.Errorf("Expected 0 for an invalid percentile, got %d", p)
	}

	h.AddSample(math.MaxInt32 * 4)
	if p := h.Percentile(100); p != 4294967296*2 {
		t.Errorf("Expected overflow bucket estimate, got %d", p)
	}
}

// TestHashString tests that hashing is deterministic per seed
func TestHashString(t *testing.T) {
	if HashString("key", 1) != HashString("key", 1) {
		t.Error("Expected equal hashes for equal input")
	}
	if HashString("key", 1) == HashString("key", 2) {
		t.Error("Expected different hashes for different seeds")
	}
	if HashString("a", 7) == HashString("b", 7) {
		t.Error("Expected different hashes for different keys")
	}
}
