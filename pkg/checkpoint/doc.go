// Package checkpoint records which courses have already been mirrored.
//
// The skip list is a plain text file with one course id per line. It is read
// once at startup and appended to after each course completes; every append
// is synced before returning, so a crash right after a course finishes still
// leaves that course recorded. A crash in the middle of a course leaves it
// unrecorded and the next run walks it again, relying on the existing files
// on disk to make that cheap.
//
// The default file lives in the platform data directory:
//   - Linux: ~/.local/share/canvasdl/skip_courses.txt
//   - macOS: ~/Library/Application Support/canvasdl/skip_courses.txt
//   - Windows: %APPDATA%/canvasdl/skip_courses.txt
package checkpoint
