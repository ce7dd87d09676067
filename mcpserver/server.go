package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"github.com/lorien/weblib/formutil"
	"github.com/lorien/weblib/logutil"
	"github.com/lorien/weblib/urlutil"
)

// Tool names.
const (
	ToolNormalizeURL      = "normalize_url"
	ToolNormalizeValues   = "normalize_values"
	ToolNormalizePostData = "normalize_post_data"
)

// Server wraps an MCP server with rate-limited normalization tools.
type Server struct {
	mcp     *server.MCPServer
	limiter *rate.Limiter
	log     *logutil.ComponentLogger
}

// New creates a Server allowing burst tool calls and refilling perSecond.
func New(version string, perSecond float64, burst int) *Server {
	s := &Server{
		mcp:     server.NewMCPServer("weblib", version, server.WithToolCapabilities(false)),
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		log:     logutil.NewLogger("mcpserver"),
	}

	s.mcp.AddTool(mcp.NewTool(ToolNormalizeURL,
		mcp.WithDescription("Normalize a URL: IDNA-encode the host and percent-encode the path, query and fragment"),
		mcp.WithString("url", mcp.Required(), mcp.Description("URL to normalize")),
	), s.handleNormalizeURL)

	s.mcp.AddTool(mcp.NewTool(ToolNormalizeValues,
		mcp.WithDescription("Expand key/value pairs into ordered key/value strings; lists expand to one pair per item"),
		mcp.WithArray("pairs", mcp.Required(), mcp.Description(`List of {"key": string, "value": any} objects`)),
	), s.handleNormalizeValues)

	s.mcp.AddTool(mcp.NewTool(ToolNormalizePostData,
		mcp.WithDescription("Render a request body: raw text, or key/value pairs as application/x-www-form-urlencoded"),
		mcp.WithString("data", mcp.Description("Raw body text; ignored when pairs is given")),
		mcp.WithArray("pairs", mcp.Description(`List of {"key": string, "value": any} objects`)),
	), s.handleNormalizePostData)

	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve runs the server on stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) checkRateLimit(tool string) error {
	if !s.limiter.Allow() {
		return fmt.Errorf("rate limit exceeded for tool %q, please wait before retrying", tool)
	}
	return nil
}

func (s *Server) handleNormalizeURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.checkRateLimit(ToolNormalizeURL); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, ok := GetStringParam(GetArgsMap(request), "url")
	if !ok {
		return mcp.NewToolResultError("url parameter is required"), nil
	}
	u, err := urlutil.Normalize(raw)
	if err != nil {
		s.log.Warn("normalize_url failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(u), nil
}

// ValuePair is the JSON form of a normalized field.
type ValuePair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *Server) handleNormalizeValues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.checkRateLimit(ToolNormalizeValues); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pairs, err := GetPairsParam(GetArgsMap(request), "pairs")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := formutil.NormalizeHTTPValues(pairs, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out := make([]ValuePair, 0, len(fields))
	for _, f := range fields {
		out = append(out, ValuePair{Key: string(f.Key), Value: string(f.Value)})
	}
	return MarshalToolResult(out)
}

func (s *Server) handleNormalizePostData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.checkRateLimit(ToolNormalizePostData); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := GetArgsMap(request)

	var data any
	if _, ok := args["pairs"]; ok {
		pairs, err := GetPairsParam(args, "pairs")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		data = pairs
	} else if text, ok := GetStringParam(args, "data"); ok {
		data = text
	} else {
		return mcp.NewToolResultError("either data or pairs is required"), nil
	}

	body, err := formutil.NormalizePostData(data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

// MarshalToolResult marshals any value to JSON and returns it as an MCP tool result.
func MarshalToolResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to marshal result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
