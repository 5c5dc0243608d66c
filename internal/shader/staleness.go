package shader

import (
	"os"
	"time"
)

// upToDate reports whether the artifact at artifactPath can be kept for a
// source last modified at srcModTime.
//
// The artifact is kept when it exists and the source is not newer than it
// by window or more. An artifact newer than its source is always kept.
func upToDate(srcModTime time.Time, artifactPath string, window time.Duration) (bool, error) {
	info, err := os.Stat(artifactPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fsError("stat", artifactPath, err)
	}
	if info.IsDir() {
		return false, nil
	}
	return srcModTime.Sub(info.ModTime()) < window, nil
}
