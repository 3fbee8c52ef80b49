package tracking

const (
	// liveSmoothingWindow is the sample window used for live tracking.
	liveSmoothingWindow = 5
	// etaSmoothingWindow is the larger window used for ETA averaging.
	etaSmoothingWindow = 10
)

// SpeedSmoother turns a stream of raw speed samples into a smoothed speed
// using a linearly recency-weighted moving average: with n samples the i-th
// oldest gets weight i, so the newest sample counts most.
type SpeedSmoother struct {
	capacity int
	samples  []float64
}

// NewSpeedSmoother creates a smoother holding at most capacity samples.
func NewSpeedSmoother(capacity int) *SpeedSmoother {
	if capacity < 1 {
		capacity = 1
	}
	return &SpeedSmoother{
		capacity: capacity,
		samples:  make([]float64, 0, capacity),
	}
}

// Add records a raw speed sample, evicting the oldest once at capacity.
// Negative samples are clamped to zero.
func (s *SpeedSmoother) Add(speed float64) {
	if speed < 0 {
		speed = 0
	}
	if len(s.samples) == s.capacity {
		s.samples = s.samples[1:]
	}
	s.samples = append(s.samples, speed)
}

// Smoothed returns the weighted average of the buffered samples, or 0 when
// no samples have been recorded.
func (s *SpeedSmoother) Smoothed() float64 {
	if len(s.samples) == 0 {
		return 0
	}

	var weightedSum, weightTotal float64
	for i, sample := range s.samples {
		weight := float64(i + 1)
		weightedSum += sample * weight
		weightTotal += weight
	}
	return weightedSum / weightTotal
}

// Len returns the number of buffered samples.
func (s *SpeedSmoother) Len() int {
	return len(s.samples)
}

// Reset discards all buffered samples.
func (s *SpeedSmoother) Reset() {
	s.samples = s.samples[:0]
}
