package version

import (
	"fmt"
	"runtime"
)

// These are set at build time with -ldflags "-X github.com/openshift/newbugs/pkg/version.commitFromGit=..."
var (
	commitFromGit string
	buildDate     string
)

// Info describes the running binary.
type Info struct {
	GitCommit string `json:"gitCommit" yaml:"gitCommit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

func Get() Info {
	commit := commitFromGit
	if commit == "" {
		commit = "unknown"
	}
	return Info{
		GitCommit: commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}
