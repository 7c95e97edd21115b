// Package canvas provides a client for the Canvas LMS REST API.
//
// This package includes:
//   - An authenticated HTTP client that follows Link header pagination
//   - Type-safe models for courses, modules, pages, assignments, folders and files
//   - Helper functions for constructing API endpoints
//   - Status code classification into the errors package taxonomy
//
// Only GET requests are issued. List requests and lookups are retried on
// network and server failures; file downloads are not.
//
// Example usage:
//
//	client, err := canvas.NewClient(cfg, log)
//	if err != nil {
//	    return err
//	}
//
//	courses, err := client.ListCourses(ctx)
//	for _, course := range courses {
//	    name, err := course.DisplayName()
//	    if errors.Is(err, errs.ErrCourseUnavailable) {
//	        continue
//	    }
//	    // walk modules, assignments and folders
//	}
package canvas
