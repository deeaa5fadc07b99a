package tracing

// Span attribute keys shared across the store and the MCP server.
const (
	AttrRecordCount    = "store.record_count"
	AttrSearchQuery    = "store.search_query"
	AttrViolationCount = "store.violation_count"

	AttrToolName  = "mcp.tool.name"
	AttrRequestID = "mcp.request.id"

	AttrErrorMessage = "error.message"
)

// Span name prefixes for consistent naming.
const (
	SpanPrefixStore = "store."
	SpanPrefixTool  = "mcp.tool."
)
