// Package mcpserver serves URL and form normalization as MCP tools.
//
// Tools:
//   - normalize_url: {"url": string} returns the normalized URL
//   - normalize_values: {"pairs": [{"key", "value"}]} returns the expanded
//     key/value list as JSON
//   - normalize_post_data: {"data": string} or {"pairs": [...]} returns the
//     request body
//
// Every tool call draws from a shared token bucket; calls beyond it fail with
// a rate limit error result.
package mcpserver
