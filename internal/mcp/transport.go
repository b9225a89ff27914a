package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// DefaultEndpoint is where the streamable HTTP transport is mounted.
const DefaultEndpoint = "/mcp"

// NewHTTPServer wraps s in the streamable HTTP transport. The result is an
// http.Handler and can be mounted on an existing router.
func NewHTTPServer(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath(endpoint))
}

// ServeStdio blocks serving s over stdin/stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
