// Package script runs the parse and generate stages of a translation in a
// sandboxed Lua state.
//
// A translator script defines two global functions:
//
//	function parse(tokens)          -- returns ast | nil, err
//	function generate(ast, options) -- returns {line, ...} | nil, err
//
// tokens is an array of {type, value, line, column} tables as produced by the
// xsharp lexer. An ast table may carry its own failure in an "error" field.
// Errors are strings or {message, line, column} tables.
package script
