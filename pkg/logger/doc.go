// Package logger provides structured logging for canvasdl.
//
// It wraps zerolog behind a small Logger interface so that the download
// pipeline can attach course and file context to every event:
//
//	log := logger.GetLogger().WithField("course_id", course.ID)
//	log.InfoWithFields("File downloaded", map[string]interface{}{
//	    "file": file.DisplayName,
//	    "path": target,
//	})
//
// Console output is human readable by default; set logging.format to json
// for machine-readable lines. logging.file additionally appends JSON events
// to a file. NewNopLogger and NewTestLogger are provided for tests.
package logger
