package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return text.Text, result.IsError
}

func TestNormalizeURLTool(t *testing.T) {
	s := New("test", 100, 100)

	text, isErr := callTool(t, s.handleNormalizeURL, map[string]any{"url": "http://почта.рф/путь"})
	assert.False(t, isErr)
	assert.Equal(t, "http://xn--80a1acny.xn--p1ai/%D0%BF%D1%83%D1%82%D1%8C", text)

	text, isErr = callTool(t, s.handleNormalizeURL, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "url parameter is required")

	text, isErr = callTool(t, s.handleNormalizeURL, map[string]any{"url": "http://bad\u0080host.рф/"})
	assert.True(t, isErr)
	assert.Contains(t, text, "host")
}

func TestNormalizeValuesTool(t *testing.T) {
	s := New("test", 100, 100)

	text, isErr := callTool(t, s.handleNormalizeValues, map[string]any{
		"pairs": []any{
			map[string]any{"key": "foo", "value": "3"},
			map[string]any{"key": "foo", "value": []any{"1", float64(2)}},
			map[string]any{"key": "bar", "value": nil},
		},
	})
	require.False(t, isErr, text)

	var got []ValuePair
	require.NoError(t, json.Unmarshal([]byte(text), &got))
	assert.Equal(t, []ValuePair{
		{Key: "foo", Value: "3"},
		{Key: "foo", Value: "1"},
		{Key: "foo", Value: "2"},
		{Key: "bar", Value: ""},
	}, got)
}

func TestNormalizeValuesTool_Errors(t *testing.T) {
	s := New("test", 100, 100)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "missing pairs", args: map[string]any{}, want: "pairs must be a list"},
		{name: "not an object", args: map[string]any{"pairs": []any{"x"}}, want: "pairs[0] must be an object"},
		{name: "key not string", args: map[string]any{"pairs": []any{map[string]any{"key": 1.0}}}, want: "pairs[0].key must be a string"},
		{name: "object value", args: map[string]any{"pairs": []any{map[string]any{"key": "a", "value": map[string]any{}}}}, want: "not displayable"},
		{name: "nested list", args: map[string]any{"pairs": []any{map[string]any{"key": "a", "value": []any{[]any{"1"}}}}}, want: "nested sequence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr := callTool(t, s.handleNormalizeValues, tt.args)
			assert.True(t, isErr)
			assert.Contains(t, text, tt.want)
		})
	}
}

func TestNormalizePostDataTool(t *testing.T) {
	s := New("test", 100, 100)

	text, isErr := callTool(t, s.handleNormalizePostData, map[string]any{
		"pairs": []any{
			map[string]any{"key": "bar", "value": float64(1)},
			map[string]any{"key": "bar", "value": []any{float64(3), float64(4)}},
			map[string]any{"key": "q", "value": "a b"},
		},
	})
	assert.False(t, isErr)
	assert.Equal(t, "bar=1&bar=3&bar=4&q=a+b", text)

	text, isErr = callTool(t, s.handleNormalizePostData, map[string]any{"data": "фыва"})
	assert.False(t, isErr)
	assert.Equal(t, "фыва", text)

	text, isErr = callTool(t, s.handleNormalizePostData, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "either data or pairs is required")
}

func TestRateLimit(t *testing.T) {
	s := New("test", 0, 1)

	_, isErr := callTool(t, s.handleNormalizeURL, map[string]any{"url": "http://test.com/"})
	assert.False(t, isErr)

	text, isErr := callTool(t, s.handleNormalizeURL, map[string]any{"url": "http://test.com/"})
	assert.True(t, isErr)
	assert.Contains(t, text, `rate limit exceeded for tool "normalize_url"`)
}

func TestGetArgsMap(t *testing.T) {
	req := mcp.CallToolRequest{}
	assert.Empty(t, GetArgsMap(req))

	req.Params.Arguments = "not-a-map"
	assert.Empty(t, GetArgsMap(req))

	req.Params.Arguments = map[string]any{"url": "x"}
	assert.Equal(t, map[string]any{"url": "x"}, GetArgsMap(req))
}

func TestGetStringParam(t *testing.T) {
	args := map[string]any{"key": "value", "num": 42}

	val, ok := GetStringParam(args, "key")
	assert.True(t, ok)
	assert.Equal(t, "value", val)

	_, ok = GetStringParam(args, "num")
	assert.False(t, ok)

	_, ok = GetStringParam(args, "missing")
	assert.False(t, ok)
}

func TestMarshalToolResult(t *testing.T) {
	result, err := MarshalToolResult(map[string]string{"status": "ok"})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	result, err = MarshalToolResult(make(chan int))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestNewRegistersTools(t *testing.T) {
	s := New("1.0.0", 1, 1)
	require.NotNil(t, s.MCP())

	resp := s.MCP().HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{ToolNormalizeURL, ToolNormalizeValues, ToolNormalizePostData} {
		assert.Contains(t, string(out), `"name":"`+name+`"`)
	}
}
