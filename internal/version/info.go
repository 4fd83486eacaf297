package version

import (
	"errors"
	"runtime/debug"

	"github.com/Masterminds/semver/v3"
)

// Info describes the running binary as recorded by the Go toolchain.
type Info struct {
	Module       string `json:"module"`
	Version      string `json:"version"`
	GoVersion    string `json:"go_version"`
	Arch         string `json:"arch"`
	OS           string `json:"os"`
	Revision     string `json:"revision,omitempty"`
	RevisionTime string `json:"revision_time,omitempty"`
	// Release is true for tagged builds without a prerelease suffix.
	Release bool `json:"release"`
}

func GetInfo() (*Info, error) {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, errors.New("could not read build info")
	}
	var revision, revisionTime, arch, goos string
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			revisionTime = setting.Value
		case "vcs.modified":
			if setting.Value == "true" {
				revision += "+dirty"
			}
		case "GOARCH":
			arch = setting.Value
		case "GOOS":
			goos = setting.Value
		}
	}
	return &Info{
		Module:       buildInfo.Main.Path,
		Version:      buildInfo.Main.Version,
		GoVersion:    buildInfo.GoVersion,
		OS:           goos,
		Revision:     revision,
		RevisionTime: revisionTime,
		Arch:         arch,
		Release:      isRelease(buildInfo.Main.Version),
	}, nil
}

func isRelease(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return v.Prerelease() == ""
}
