// Package mirror downloads the materials of every course into a local tree.
//
// Layout of a mirrored course:
//
//	<root>/<course>/Modules/<module>/<file>
//	<root>/<course>/Assignments/<assignment>/<file>
//	<root>/<course>/<folder full name>/<file>
//
// The pipeline is strictly sequential. A Driver walks courses one after
// another; a Materializer walks one course; an Acquirer decides per file
// whether to transfer it. Within a course a Ledger stops the same remote
// file from being transferred twice. Across runs the existence of the
// target path does the same, and completed courses are recorded in a skip
// list so later runs can pass over them entirely.
//
// Usage:
//
//	driver := mirror.NewDriver(client, mirror.Options{
//	    Root:     cfg.Output.SavePath,
//	    SkipList: checkpoint.NewSkipList(path),
//	})
//	summary, err := driver.Run(ctx)
package mirror
