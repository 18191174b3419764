// Package version reports the build of the voiceshift binary.
//
// Version, GitCommit, GitBranch and BuildTime are injected with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/voiceshift/version.Version=0.3.0" ./cmd/voiceshift
//
// Values left empty are filled from the module's embedded VCS settings.
package version
