package version

import "testing"

func TestStringFormatsBuildIdentity(t *testing.T) {
	origVersion, origSHA, origBuild := Version, GitSHA, BuildTime
	defer func() { Version, GitSHA, BuildTime = origVersion, origSHA, origBuild }()

	Version, GitSHA, BuildTime = "1.2.3", "abc1234", "2026-07-30T00:00:00Z"

	got := String()
	want := "1.2.3 (abc1234, built 2026-07-30T00:00:00Z)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCurrentSnapshotsPackageVariables(t *testing.T) {
	origVersion, origSHA, origBuild := Version, GitSHA, BuildTime
	defer func() { Version, GitSHA, BuildTime = origVersion, origSHA, origBuild }()

	Version, GitSHA, BuildTime = "1.2.3", "abc1234", "2026-07-30T00:00:00Z"

	info := Current()
	if info != (Info{Version: "1.2.3", GitSHA: "abc1234", BuildTime: "2026-07-30T00:00:00Z"}) {
		t.Errorf("Current() = %+v, want matching Info", info)
	}
}
