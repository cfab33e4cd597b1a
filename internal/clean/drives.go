package clean

import "strings"

// driveOf returns the volume identifier ("C:") for a path that begins with
// a drive letter, or "" when none can be determined.
func driveOf(path string) string {
	if len(path) < 2 || path[1] != ':' {
		return ""
	}
	c := path[0]
	if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
		return ""
	}
	return strings.ToUpper(path[:1]) + ":"
}

// commonDrive returns the drive shared by every path, or "" if they differ
// or any path has none.
func commonDrive(paths []string) string {
	drive := ""
	for i, p := range paths {
		d := driveOf(p)
		if d == "" {
			return ""
		}
		if i == 0 {
			drive = d
			continue
		}
		if !strings.EqualFold(d, drive) {
			return ""
		}
	}
	return drive
}
