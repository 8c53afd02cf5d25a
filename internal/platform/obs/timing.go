package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// Time logs the duration and outcome of an operation when the returned
// func runs, typically deferred with a named error return.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Error().Err(*errp).Str("req_id", reqID).Str("op", name).
				Int64("dur_ms", dur.Milliseconds()).Msg("op failed")
			return
		}
		log.Debug().Str("req_id", reqID).Str("op", name).
			Int64("dur_ms", dur.Milliseconds()).Msg("op done")
	}
}
