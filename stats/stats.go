// Package stats provides the streaming sample statistics used by the reveal
// simulator. The exact engine never needs these; they exist to summarize
// simulated games.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	Epsilon = 1e-6
)

func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Sample accumulates observations one at a time, keeping a running mean and
// variance via Welford's algorithm.
type Sample struct {
	n    int
	last float64

	meanOld float64
	meanNew float64
	sOld    float64
	sNew    float64
}

func (s *Sample) Push(val float64) {
	s.last = val
	s.n++
	if s.n == 1 {
		s.meanOld = val
		s.meanNew = val
		s.sOld = 0
	} else {
		s.meanNew = s.meanOld + (val-s.meanOld)/float64(s.n)
		s.sNew = s.sOld + (val-s.meanOld)*(val-s.meanNew)
		s.meanOld = s.meanNew
		s.sOld = s.sNew
	}
}

func (s *Sample) Mean() float64 {
	if s.n > 0 {
		return s.meanNew
	}
	return 0.0
}

func (s *Sample) Variance() float64 {
	if s.n <= 1 {
		return 0.0
	}
	return s.sNew / float64(s.n-1)
}

func (s *Sample) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

func (s *Sample) StandardError() float64 {
	if s.n == 0 {
		return 0.0
	}
	return math.Sqrt(s.Variance() / float64(s.n))
}

func (s *Sample) Last() float64 {
	return s.last
}

func (s *Sample) Iterations() int {
	return s.n
}

// ConfidenceInterval returns the two-sided normal-approximation interval
// around the sample mean. The interval is a percentage from 0 to 100.
func (s *Sample) ConfidenceInterval(interval float64) (float64, float64) {
	z := ZVal(interval)
	m := s.Mean()
	half := z * s.StandardError()
	return m - half, m + half
}

// ZVal returns the two-tailed Z-value associated with a specific confidence
// interval, given as a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}
