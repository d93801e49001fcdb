package tracing

// Span names.
const (
	SpanCompile = "pipeline.compile"
	SpanPrefix  = "pipeline."
	SpanPersist = "artifact.write"
	SpanHistory = "history.save"
)

// Attribute keys.
const (
	AttrSourceID     = "source.id"
	AttrSourceBytes  = "source.bytes"
	AttrStage        = "pipeline.stage"
	AttrFailedStage  = "pipeline.failed_stage"
	AttrLineCount    = "assembly.lines"
	AttrSuppressTail = "options.suppress_trailing_instruction"
	AttrArtifactPath = "artifact.path"
	AttrErrorLine    = "error.line"
	AttrErrorColumn  = "error.column"
)
