package types

import "fmt"

type VersionInfo struct {
	Major    int
	Minor    int
	Patch    int
	Revision int
	Raw      string
}

func (v VersionInfo) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	return fmt.Sprintf("%d.%d.%d.%d", v.Major, v.Minor, v.Patch, v.Revision)
}

// RestoreOptions is built once per run and shared by every restore
// invocation.
type RestoreOptions struct {
	ExecutablePath            string
	ConfigFile                string
	NoCache                   bool
	DisableParallelProcessing bool
	Verbosity                 string
	PackagesDirectory         string
	Environment               ExecutionEnvironment
	Auth                      AuthenticationDescriptor
}

type ProcessSpec struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}
