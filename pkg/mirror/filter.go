package mirror

import (
	"strings"

	"canvasdl/pkg/canvas"
)

// deniedExtensions are the video formats that are never downloaded
var deniedExtensions = map[string]struct{}{
	"mp4":  {},
	"mov":  {},
	"webm": {},
	"wmv":  {},
	"flv":  {},
	"ogv":  {},
	"avi":  {},
}

// IsEligible reports whether file should be downloaded. Everything is
// eligible except the video formats in the deny list; files without an
// extension are eligible.
func IsEligible(file *canvas.File) bool {
	name := file.Filename
	if name == "" {
		name = file.DisplayName
	}
	_, denied := deniedExtensions[Extension(name)]
	return !denied
}

// Extension returns the lower-cased text after the last period of name, or
// an empty string when there is none.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
