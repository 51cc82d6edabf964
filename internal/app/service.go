package app

import (
	"os"
	"runtime"

	"nuget-restore/internal/adapters"
	"nuget-restore/internal/ports"
)

type Service struct {
	Locations           ports.PackagingLocationPort
	Matcher             ports.FileMatcherPort
	Versions            ports.VersionReaderPort
	CredentialProviders ports.CredentialProviderPort
	Endpoints           ports.ExternalEndpointsPort
	Config              ports.NuGetConfigPort
	Runner              ports.ProcessRunnerPort
	Reporter            ports.PipelineReporterPort
	Environ             func() []string
	GOOS                string
}

func NewService(locationTimeoutSec int) Service {
	return Service{
		Locations:           adapters.NewLocationServiceAdapter(locationTimeoutSec),
		Matcher:             adapters.NewFileMatcherAdapter(),
		Versions:            adapters.NewVersionReaderAdapter(adapters.NewProcessRunnerAdapter(nil, nil)),
		CredentialProviders: adapters.NewCredentialProviderAdapter(),
		Endpoints:           adapters.NewExternalEndpointsAdapter(),
		Config:              adapters.NewNuGetConfigAdapter(""),
		Runner:              adapters.NewProcessRunnerAdapter(os.Stdout, os.Stderr),
		Reporter:            adapters.NewPipelineReporterAdapter(os.Stdout),
		Environ:             os.Environ,
		GOOS:                runtime.GOOS,
	}
}
