package ports

import "nuget-restore/internal/types"

// PipelineReporterPort surfaces issues, telemetry and the final result to the
// hosting pipeline.
type PipelineReporterPort interface {
	Error(message string)
	Warning(message string)
	Telemetry(area string, feature string, data map[string]any)
	Complete(result types.TaskResult, message string)
}
