package app

import (
	"os"
	"runtime/debug"
	"strconv"
	"sync"
)

// TestModeEnv switches the binaries into a no-op mode so test packages can
// link them without starting servers.
const TestModeEnv = "SHELF_TEST_MODE"

// InTestMode reports whether TestModeEnv holds a true boolean.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}

var buildVersion = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "dev"
	}
	return versionFrom(info)
})

// BuildVersion identifies the running binary: the module version when built
// from a tagged release, otherwise a short VCS revision, otherwise "dev".
func BuildVersion() string {
	return buildVersion()
}

func versionFrom(info *debug.BuildInfo) string {
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return "dev"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		revision += "-dirty"
	}
	return revision
}
