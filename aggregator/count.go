package aggregator

import (
	"github.com/kuangyh/winsaw"
	"golang.org/x/net/context"
)

// Count aggregator saw counts the number of items emitted to it.
type Count struct {
	Current Metric
}

func (count *Count) Emit(datum saw.Datum) error {
	count.Current++
	return nil
}

func (count *Count) MergeFrom(other saw.Saw) error {
	count.Current += other.(*Count).Current
	return nil
}

func (count *Count) Result(ctx context.Context) (interface{}, error) {
	return count.Current, nil
}
