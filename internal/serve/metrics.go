package serve

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	classifiedSeries = stats.Int64("serve/series", "Series received by the classify endpoint", stats.UnitDimensionless)

	keyStatus, _ = tag.NewKey("status")
)

const (
	statusClassified = "classified"
	statusRejected   = "rejected"
	statusFailed     = "failed"
)

var Views = []*view.View{
	{
		Name:        "serve/series",
		Description: "Number of series by request status",
		Measure:     classifiedSeries,
		TagKeys:     []tag.Key{keyStatus},
		Aggregation: view.Sum(),
	},
}

func RegisterViews() error {
	return view.Register(Views...)
}
