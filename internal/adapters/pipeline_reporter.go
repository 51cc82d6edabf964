package adapters

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"nuget-restore/internal/ports"
	"nuget-restore/internal/types"
)

// PipelineReporterAdapter writes ##vso logging commands understood by the
// pipeline agent.
type PipelineReporterAdapter struct {
	Out io.Writer
}

func NewPipelineReporterAdapter(out io.Writer) PipelineReporterAdapter {
	if out == nil {
		out = os.Stdout
	}
	return PipelineReporterAdapter{Out: out}
}

func (a PipelineReporterAdapter) Error(message string) {
	a.command("task.logissue", map[string]string{"type": "error"}, message)
}

func (a PipelineReporterAdapter) Warning(message string) {
	a.command("task.logissue", map[string]string{"type": "warning"}, message)
}

func (a PipelineReporterAdapter) Telemetry(area string, feature string, data map[string]any) {
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("{}")
	}
	a.command("telemetry.publish", map[string]string{"area": area, "feature": feature}, string(payload))
}

func (a PipelineReporterAdapter) Complete(result types.TaskResult, message string) {
	a.command("task.complete", map[string]string{"result": string(result)}, message)
}

func (a PipelineReporterAdapter) command(name string, properties map[string]string, message string) {
	var props []string
	for _, key := range []string{"type", "area", "feature", "result"} {
		if value, ok := properties[key]; ok {
			props = append(props, key+"="+escapeProperty(value))
		}
	}
	fmt.Fprintf(a.Out, "##vso[%s %s;]%s\n", name, strings.Join(props, ";"), escapeMessage(message))
}

var messageEscaper = strings.NewReplacer("%", "%AZP25", "\r", "%0D", "\n", "%0A")

var propertyEscaper = strings.NewReplacer("%", "%AZP25", "\r", "%0D", "\n", "%0A", "]", "%5D", ";", "%3B")

func escapeMessage(value string) string {
	return messageEscaper.Replace(value)
}

func escapeProperty(value string) string {
	return propertyEscaper.Replace(value)
}

var _ ports.PipelineReporterPort = PipelineReporterAdapter{}
