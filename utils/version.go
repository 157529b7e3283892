package utils

import (
	"fmt"
	"runtime"
)

// Version is the build information stamped in at link time.
type Version struct {
	Version   string `json:"version"`
	Branch    string `json:"branch"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Arch      string `json:"arch"`
}

var current = Version{Version: "dev", Arch: runtime.GOARCH}

// SetVersion populates the package-level version variables.
func SetVersion(versionStr, branchStr, commitStr, buildDateStr, archStr string) {
	if versionStr != "" {
		current.Version = versionStr
	}
	current.Branch = branchStr
	current.Commit = commitStr
	current.BuildDate = buildDateStr
	if archStr != "" {
		current.Arch = archStr
	}
}

// GetVersion constructs and returns the version information for the service.
func GetVersion() Version {
	return current
}

// String renders the version as "1.2.3 (main@abc123)".
func (v Version) String() string {
	if v.Commit == "" {
		return v.Version
	}
	return fmt.Sprintf("%s (%s@%s)", v.Version, v.Branch, v.Commit)
}
