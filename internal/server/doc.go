// Package server implements the MCP (Model Context Protocol) server for the Dudel editor.
//
// This package provides a JSON-RPC 2.0 server that drives one editor.Session,
// so an MCP client can sketch on the canvas, inspect it, and turn the sketch
// (or a loaded photo) into a generated image.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Canvas setup:
//   - canvas_resize: Size the canvas for a layout (clears it)
//   - canvas_status: Current tool, mode, stage and last error
//
// Drawing:
//   - canvas_set_tool: Tool, color and width
//   - canvas_pointer: One pointer event
//   - canvas_stroke: A whole gesture
//   - canvas_clear: Erase everything
//
// Inspection:
//   - canvas_has_content: Whether anything is drawn
//   - canvas_sample_color: Color at a pixel
//   - canvas_snapshot: PNG of the canvas on white
//
// Generation:
//   - canvas_set_mode: Sketch or photo
//   - photo_load: Reference photo for photo mode
//   - generate: Run the image model and wait for the result
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, which for generate is the message a user
//     would see (for example "Please draw something before generating!")
package server
