// Package retry repeats Canvas API requests that fail transiently.
//
// Only network and 5xx failures are retried; authorization and
// missing-resource failures return immediately so the caller can classify
// them. File transfers are never retried here: a failed file is left absent
// and picked up by the next run.
//
//	cfg := retry.FromSettings(&appCfg.Retry, log)
//	course, err := retry.DoWithResult(ctx, cfg, func() (*canvas.Course, error) {
//		return fetch(ctx)
//	})
package retry
