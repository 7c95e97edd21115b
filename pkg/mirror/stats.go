package mirror

// Outcome is what happened to a single file
type Outcome string

const (
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeExists     Outcome = "exists"
	OutcomeIneligible Outcome = "ineligible"
	OutcomeFailed     Outcome = "failed"
)

// FileResult describes the handling of one remote file
type FileResult struct {
	FileID  int64
	Name    string
	Path    string
	Outcome Outcome
	Bytes   int64
	Err     error
}

// SkipReason explains why a course was not walked
type SkipReason string

const (
	SkipRecorded    SkipReason = "already in skip list"
	SkipUnavailable SkipReason = "course unavailable"
)

// Stats counts file outcomes
type Stats struct {
	Downloaded int
	Existing   int
	Duplicates int
	Ineligible int
	Failed     int
	Bytes      int64
}

// Record counts one file result
func (s *Stats) Record(r FileResult) {
	switch r.Outcome {
	case OutcomeDownloaded:
		s.Downloaded++
		s.Bytes += r.Bytes
	case OutcomeExists:
		s.Existing++
	case OutcomeDuplicate:
		s.Duplicates++
	case OutcomeIneligible:
		s.Ineligible++
	case OutcomeFailed:
		s.Failed++
	}
}

// Merge adds other's counts to s
func (s *Stats) Merge(other Stats) {
	s.Downloaded += other.Downloaded
	s.Existing += other.Existing
	s.Duplicates += other.Duplicates
	s.Ineligible += other.Ineligible
	s.Failed += other.Failed
	s.Bytes += other.Bytes
}

// Skipped returns the number of files that needed no transfer
func (s Stats) Skipped() int {
	return s.Existing + s.Duplicates + s.Ineligible
}

// Summary describes a whole run
type Summary struct {
	UserName           string
	CoursesProcessed   int
	CoursesSkipped     int
	CoursesUnavailable int
	CoursesFailed      int
	Files              Stats
}
