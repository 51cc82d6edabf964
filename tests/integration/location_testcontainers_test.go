//go:build integration

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"nuget-restore/internal/adapters"
	"nuget-restore/internal/types"
)

func TestLocationServiceWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startLocationServiceMock(ctx, t)
	t.Cleanup(cleanup)

	adapter := adapters.NewLocationServiceAdapter(10)
	location, err := adapter.PackagingURIs(ctx, endpoint+"/contoso/", "secret")
	require.NoError(t, err)
	want := types.PackagingLocation{
		URIPrefixes: []string{"https://contoso.pkgs.visualstudio.com/", "https://pkgs.dev.azure.com/contoso/"},
		DefaultURI:  "https://pkgs.dev.azure.com/contoso/",
	}
	if diff := cmp.Diff(want, location); diff != "" {
		t.Fatalf("unexpected location (-want +got):\n%s", diff)
	}

	_, err = adapter.PackagingURIs(ctx, endpoint+"/contoso/", "wrong")
	require.Error(t, err)
}

func startLocationServiceMock(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8080/tcp"},
		Cmd:          []string{"python", "-c", locationServiceMockScript},
		WaitingFor:   wait.ForListeningPort("8080/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}

const locationServiceMockScript = `
import http.server
import json

SERVICE_PATH = "/contoso/_apis/servicedefinitions/LocationService2/7ab4e64e-c4d8-4f50-ae73-5ef2e21642a5"

class Handler(http.server.BaseHTTPRequestHandler):
    def do_GET(self):
        if self.headers.get("Authorization") != "Bearer secret":
            self.send_response(401)
            self.end_headers()
            return
        if not self.path.startswith(SERVICE_PATH):
            self.send_response(404)
            self.end_headers()
            return
        body = json.dumps({
            "serviceType": "LocationService2",
            "locationMappings": [
                {"accessMappingMoniker": "HostGuidAccessMapping", "location": "https://contoso.pkgs.visualstudio.com/"},
                {"accessMappingMoniker": "PublicAccessMapping", "location": "https://pkgs.dev.azure.com/contoso/"},
            ],
        }).encode()
        self.send_response(200)
        self.send_header("Content-Type", "application/json")
        self.send_header("Content-Length", str(len(body)))
        self.end_headers()
        self.wfile.write(body)

    def log_message(self, format, *args):
        pass

http.server.HTTPServer(("0.0.0.0", 8080), Handler).serve_forever()
`
