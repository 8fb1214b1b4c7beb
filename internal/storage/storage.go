package storage

import (
	"context"

	"benchviz/internal/model"
)

// ResultSink receives the numeric results of a report run.
type ResultSink interface {
	PutReport(ctx context.Context, report model.Report) error
}
