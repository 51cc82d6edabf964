package adapters

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/tidwall/gjson"

	"nuget-restore/internal/ports"
	"nuget-restore/internal/shared"
	"nuget-restore/internal/types"
)

// packagingServiceID identifies the packaging service in the location
// service's service definitions.
const packagingServiceID = "7ab4e64e-c4d8-4f50-ae73-5ef2e21642a5"
const locationAPIVersion = "5.0-preview.1"
const publicAccessMapping = "PublicAccessMapping"
const defaultLocationTimeout = 10 * time.Second
const maxLocationResponseSize = 4 * 1024 * 1024

type LocationServiceAdapter struct {
	Timeout time.Duration
}

func NewLocationServiceAdapter(timeoutSec int) LocationServiceAdapter {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultLocationTimeout
	}
	return LocationServiceAdapter{Timeout: timeout}
}

func (a LocationServiceAdapter) PackagingURIs(ctx context.Context, collectionURI string, accessToken string) (types.PackagingLocation, error) {
	base := strings.TrimRight(strings.TrimSpace(collectionURI), "/")
	if base == "" {
		return types.PackagingLocation{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("collection uri is empty")
	}
	url := fmt.Sprintf("%s/_apis/servicedefinitions/LocationService2/%s?api-version=%s", base, packagingServiceID, locationAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.PackagingLocation{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create location service request").
			WithCause(err)
	}
	req.Header.Set("Accept", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	client := &http.Client{Timeout: a.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return types.PackagingLocation{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("location service request failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLocationResponseSize))
	if err != nil {
		return types.PackagingLocation{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read location service response").
			WithCause(err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.PackagingLocation{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("location service request failed").
			WithCause(shared.HTTPStatusErrorWithBody(resp.StatusCode, url, strings.TrimSpace(string(body))))
	}
	return parsePackagingLocation(body)
}

func parsePackagingLocation(body []byte) (types.PackagingLocation, error) {
	if !gjson.ValidBytes(body) {
		return types.PackagingLocation{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("location service returned invalid json")
	}
	var location types.PackagingLocation
	for _, mapping := range gjson.GetBytes(body, "locationMappings").Array() {
		uri := strings.TrimSpace(mapping.Get("location").String())
		if uri == "" {
			continue
		}
		location.URIPrefixes = append(location.URIPrefixes, uri)
		if location.DefaultURI == "" && mapping.Get("accessMappingMoniker").String() == publicAccessMapping {
			location.DefaultURI = uri
		}
	}
	if len(location.URIPrefixes) == 0 {
		return types.PackagingLocation{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("location service returned no packaging locations")
	}
	if location.DefaultURI == "" {
		location.DefaultURI = location.URIPrefixes[0]
	}
	return location, nil
}

var _ ports.PackagingLocationPort = LocationServiceAdapter{}
