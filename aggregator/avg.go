package aggregator

import (
	"github.com/kuangyh/winsaw"
	"golang.org/x/net/context"
)

// AvgState is Avg's accumulator: a running sum and count, so that merging
// (and, for the windowing operator, deducting) stays exact instead of
// averaging averages.
type AvgState struct {
	Sum   Metric
	Count int64
}

// Avg aggregator saw computes the mean of the metrics emitted to it.
type Avg struct {
	state AvgState
}

func (avg *Avg) Emit(datum saw.Datum) error {
	avg.state.Sum += datum.Value.(Metric)
	avg.state.Count++
	return nil
}

func (avg *Avg) MergeFrom(other saw.Saw) error {
	o := other.(*Avg)
	avg.state.Sum += o.state.Sum
	avg.state.Count += o.state.Count
	return nil
}

func (avg *Avg) Result(ctx context.Context) (interface{}, error) {
	if avg.state.Count == 0 {
		return Metric(0), nil
	}
	return avg.state.Sum / Metric(avg.state.Count), nil
}
