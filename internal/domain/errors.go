package domain

import "errors"

// ErrNoData signals an empty series for the requested asset/window. It is a
// non-fatal warning: downstream metrics for that asset are skipped, the run
// continues.
var ErrNoData = errors.New("no data available for selected timeframe")

// ErrInsufficientData signals that a metric requiring at least two
// observations (or non-zero variance) cannot be computed. Callers must treat
// it as "metric undefined", distinct from a valid negative value.
var ErrInsufficientData = errors.New("insufficient data for metric")

// ErrNoAssets signals a request with an empty asset selection. The pipeline
// does not compute on an empty set; the presentation layer is expected to
// block or handle this case.
var ErrNoAssets = errors.New("no assets selected")
