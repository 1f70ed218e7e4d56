package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-sod/boss/internal/classifier/boss"
)

// Result is the outcome of one train/test run on a problem.
type Result struct {
	ID            uuid.UUID     `json:"id"`
	Problem       string        `json:"problem"`
	TrainSize     int           `json:"trainSize"`
	TestSize      int           `json:"testSize"`
	NumClasses    int           `json:"numClasses"`
	SeriesLength  int           `json:"seriesLength"`
	TrainAccuracy float64       `json:"trainAccuracy"`
	TestAccuracy  float64       `json:"testAccuracy"`
	Members       []boss.Member `json:"members"`
	BuildTime     time.Duration `json:"buildTime"`
	TestTime      time.Duration `json:"testTime"`
	CreatedAt     time.Time     `json:"createdAt"`
}

func NewResult(problem string, createdAt time.Time) Result {
	return Result{
		ID:        uuid.New(),
		Problem:   problem,
		CreatedAt: createdAt,
	}
}

// Loss is the fraction of misclassified test series.
func (r Result) Loss() float64 {
	return 1 - r.TestAccuracy
}
