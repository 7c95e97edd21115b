package mirror

import "canvasdl/pkg/canvas"

// NopReporter discards all progress
type NopReporter struct{}

func (NopReporter) CourseStarted(canvas.Course, string)     {}
func (NopReporter) CourseSkipped(canvas.Course, SkipReason) {}
func (NopReporter) CourseFinished(canvas.Course, Stats)     {}
func (NopReporter) FileFinished(canvas.Course, FileResult)  {}
func (NopReporter) Problem(canvas.Course, string, error)    {}
