package boss

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	candidateLatencyMs = stats.Float64("boss/candidate_latency", "Time to build and score one window size", stats.UnitMilliseconds)
	candidateAccuracy  = stats.Float64("boss/candidate_accuracy", "Best leave-one-out accuracy of one window size", stats.UnitDimensionless)
	candidates         = stats.Int64("boss/candidates", "Evaluated window sizes", stats.UnitDimensionless)

	keyOutcome, _ = tag.NewKey("outcome")
)

const (
	outcomeAdmitted = "admitted"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// Views are the aggregations of the ensemble measures.
var Views = []*view.View{
	{
		Name:        "boss/candidate_latency",
		Description: "Distribution of candidate build latency",
		Measure:     candidateLatencyMs,
		Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000),
	},
	{
		Name:        "boss/candidate_accuracy",
		Description: "Distribution of candidate accuracy",
		Measure:     candidateAccuracy,
		Aggregation: view.Distribution(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1),
	},
	{
		Name:        "boss/candidates",
		Description: "Number of candidates by outcome",
		Measure:     candidates,
		TagKeys:     []tag.Key{keyOutcome},
		Aggregation: view.Count(),
	},
}

// RegisterViews registers Views with the default opencensus worker.
func RegisterViews() error {
	return view.Register(Views...)
}
