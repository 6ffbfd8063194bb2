package predictor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jwaldner/stockai/internal/logger"
	"github.com/jwaldner/stockai/internal/models"
)

// SlowRequestThreshold marks a prediction call as slow in the stats
const SlowRequestThreshold = 10 * time.Second

// PerformanceWrapper wraps a Predictor with timing and counters
type PerformanceWrapper struct {
	next Predictor

	mu               sync.Mutex
	totalRequests    int64
	failedRequests   int64
	totalDuration    time.Duration
	slowRequestCount int64
}

// Stats is a point-in-time copy of the wrapper's counters
type Stats struct {
	TotalRequests   int64
	FailedRequests  int64
	SlowRequests    int64
	TotalDuration   time.Duration
	AverageDuration time.Duration
}

// NewPerformanceWrapper creates a wrapper around a prediction client
func NewPerformanceWrapper(next Predictor) *PerformanceWrapper {
	return &PerformanceWrapper{next: next}
}

// Predict wraps the underlying call with performance monitoring
func (pw *PerformanceWrapper) Predict(ctx context.Context, req models.PredictionRequest) ([]models.PricePoint, error) {
	start := time.Now()
	points, err := pw.next.Predict(ctx, req)
	duration := time.Since(start)

	pw.recordRequest(duration, err)

	logger.Debug.Printf("📡 API CALL: Predict(%s, %d, %s) took %v", req.Symbol, req.Days, req.Interval, duration)
	if duration > SlowRequestThreshold {
		logger.Warn.Printf("⚠️  SLOW API CALL: Predict(%s) took %v", req.Symbol, duration)
	}

	return points, err
}

// Ping is forwarded without accounting
func (pw *PerformanceWrapper) Ping(ctx context.Context) error {
	return pw.next.Ping(ctx)
}

func (pw *PerformanceWrapper) recordRequest(duration time.Duration, err error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	pw.totalRequests++
	pw.totalDuration += duration
	if err != nil {
		pw.failedRequests++
	}
	if duration > SlowRequestThreshold {
		pw.slowRequestCount++
	}
}

// Stats returns the current counters
func (pw *PerformanceWrapper) Stats() Stats {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	s := Stats{
		TotalRequests:  pw.totalRequests,
		FailedRequests: pw.failedRequests,
		SlowRequests:   pw.slowRequestCount,
		TotalDuration:  pw.totalDuration,
	}
	if pw.totalRequests > 0 {
		s.AverageDuration = time.Duration(int64(pw.totalDuration) / pw.totalRequests)
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf(`
📊 Prediction Client Performance Stats
======================================
Total Requests:    %d
Failed Requests:   %d
Average Duration:  %v
Total Time:        %v
Slow Requests:     %d (>%v)
`,
		s.TotalRequests,
		s.FailedRequests,
		s.AverageDuration,
		s.TotalDuration,
		s.SlowRequests,
		SlowRequestThreshold,
	)
}

// Close logs the final performance report
func (pw *PerformanceWrapper) Close() {
	if stats := pw.Stats(); stats.TotalRequests > 0 {
		logger.Info.Printf("📊 Prediction Performance Report:%s", stats)
	}
}
