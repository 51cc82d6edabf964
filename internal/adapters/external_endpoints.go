package adapters

import (
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"nuget-restore/internal/ports"
	"nuget-restore/internal/types"
)

const endpointURLPrefix = "ENDPOINT_URL_"
const endpointAuthPrefix = "ENDPOINT_AUTH_"

// ExternalEndpointsAdapter reads service connections exposed by the pipeline
// agent as ENDPOINT_URL_<id>/ENDPOINT_AUTH_<id> variables, plus an optional
// yaml file for runs outside the agent.
type ExternalEndpointsAdapter struct {
	LookupEnv func(string) (string, bool)
}

type endpointsFile struct {
	Endpoints []endpointEntry `yaml:"endpoints"`
}

type endpointEntry struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func NewExternalEndpointsAdapter() ExternalEndpointsAdapter {
	return ExternalEndpointsAdapter{LookupEnv: os.LookupEnv}
}

func (a ExternalEndpointsAdapter) Load(endpointIDs []string, endpointsFile string) ([]types.ExternalAuth, error) {
	var result []types.ExternalAuth
	for _, id := range endpointIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		auth, err := a.loadEndpoint(id)
		if err != nil {
			return nil, err
		}
		result = append(result, auth)
	}
	if path := strings.TrimSpace(endpointsFile); path != "" {
		fromFile, err := loadEndpointsFile(path)
		if err != nil {
			return nil, err
		}
		result = append(result, fromFile...)
	}
	return result, nil
}

func (a ExternalEndpointsAdapter) loadEndpoint(id string) (types.ExternalAuth, error) {
	key := endpointVariableName(id)
	lookup := a.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	uri, ok := lookup(endpointURLPrefix + key)
	if !ok || strings.TrimSpace(uri) == "" {
		return types.ExternalAuth{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("service connection %s not found", id))
	}
	raw, ok := lookup(endpointAuthPrefix + key)
	if !ok || !gjson.Valid(raw) {
		return types.ExternalAuth{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("service connection %s has no valid authorization", id))
	}
	parsed := gjson.Parse(raw)
	auth := types.ExternalAuth{
		EndpointURI: strings.TrimSpace(uri),
		Username:    parsed.Get("parameters.username").String(),
		Secret:      parsed.Get("parameters.password").String(),
	}
	if token := parsed.Get("parameters.apitoken").String(); token != "" {
		auth.Secret = token
	}
	if auth.Secret == "" {
		return types.ExternalAuth{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("service connection %s has no secret", id))
	}
	return auth, nil
}

func endpointVariableName(id string) string {
	return strings.ToUpper(strings.ReplaceAll(id, ".", "_"))
}

func loadEndpointsFile(path string) ([]types.ExternalAuth, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("endpoints file not found").
			WithCause(err)
	}
	var file endpointsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse endpoints yaml").
			WithCause(err)
	}
	result := make([]types.ExternalAuth, 0, len(file.Endpoints))
	for i, entry := range file.Endpoints {
		if strings.TrimSpace(entry.URI) == "" {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("endpoints[%d].uri must be set", i))
		}
		result = append(result, types.ExternalAuth{
			EndpointURI: strings.TrimSpace(entry.URI),
			Username:    entry.Username,
			Secret:      entry.Password,
		})
	}
	return result, nil
}

var _ ports.ExternalEndpointsPort = ExternalEndpointsAdapter{}
