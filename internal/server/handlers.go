package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/dudel/internal/canvas"
	"github.com/ironsheep/dudel/internal/editor"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "canvas_stroke", "generate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "canvas_resize":
		return s.handleCanvasResize(args)
	case "canvas_status":
		return s.session.Status(), nil

	case "canvas_set_tool":
		return s.handleCanvasSetTool(args)
	case "canvas_pointer":
		return s.handleCanvasPointer(args)
	case "canvas_stroke":
		return s.handleCanvasStroke(args)
	case "canvas_clear":
		s.session.Clear()
		return s.session.Status(), nil

	case "canvas_has_content":
		return hasContentResult{HasContent: s.session.HasContent()}, nil
	case "canvas_sample_color":
		return s.handleCanvasSampleColor(args)
	case "canvas_snapshot":
		return s.handleCanvasSnapshot(args)

	case "canvas_set_mode":
		return s.handleCanvasSetMode(args)
	case "photo_load":
		return s.handlePhotoLoad(args)
	case "generate":
		return s.handleGenerate(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Canvas Setup Handlers ===

type canvasResizeArgs struct {
	ContainerWidth   float64 `json:"container_width"`
	ViewportWidth    float64 `json:"viewport_width"`
	DevicePixelRatio float64 `json:"device_pixel_ratio"`
}

type sizeResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleCanvasResize(args json.RawMessage) (interface{}, error) {
	var a canvasResizeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.ContainerWidth <= 0 {
		return nil, errors.New("container_width must be positive")
	}
	if a.ViewportWidth == 0 {
		a.ViewportWidth = a.ContainerWidth
	}
	if a.DevicePixelRatio == 0 {
		a.DevicePixelRatio = 1.0
	}
	w, h, err := s.session.Resize(canvas.Layout{
		ContainerWidth:   a.ContainerWidth,
		ViewportWidth:    a.ViewportWidth,
		DevicePixelRatio: a.DevicePixelRatio,
	})
	if err != nil {
		return nil, err
	}
	return sizeResult{Width: w, Height: h}, nil
}

// === Drawing Handlers ===

type canvasSetToolArgs struct {
	Tool  string   `json:"tool"`
	Color string   `json:"color"`
	Width *float64 `json:"width"`
}

func (s *Server) handleCanvasSetTool(args json.RawMessage) (interface{}, error) {
	var a canvasSetToolArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Tool != "" {
		t, err := editor.ParseTool(a.Tool)
		if err != nil {
			return nil, err
		}
		s.session.SetTool(t)
	}
	if a.Color != "" {
		if err := s.session.SetColor(a.Color); err != nil {
			return nil, err
		}
	}
	if a.Width != nil {
		if err := s.session.SetWidth(*a.Width); err != nil {
			return nil, err
		}
	}
	return s.session.Status(), nil
}

type canvasPointerArgs struct {
	Action string  `json:"action"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type hasContentResult struct {
	HasContent bool `json:"has_content"`
}

func (s *Server) handleCanvasPointer(args json.RawMessage) (interface{}, error) {
	var a canvasPointerArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	action, err := editor.ParsePointerAction(a.Action)
	if err != nil {
		return nil, err
	}
	if err := s.session.Pointer(action, canvas.Point{X: a.X, Y: a.Y}); err != nil {
		return nil, err
	}
	return hasContentResult{HasContent: s.session.HasContent()}, nil
}

type canvasStrokeArgs struct {
	Points []canvas.Point `json:"points"`
}

func (s *Server) handleCanvasStroke(args json.RawMessage) (interface{}, error) {
	var a canvasStrokeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if err := s.session.Stroke(a.Points); err != nil {
		return nil, err
	}
	return hasContentResult{HasContent: s.session.HasContent()}, nil
}

// === Inspection Handlers ===

type canvasSampleColorArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (s *Server) handleCanvasSampleColor(args json.RawMessage) (interface{}, error) {
	var a canvasSampleColorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return s.session.SampleColor(a.X, a.Y)
}

type canvasSnapshotArgs struct {
	Scale float64 `json:"scale"`
}

func (s *Server) handleCanvasSnapshot(args json.RawMessage) (interface{}, error) {
	var a canvasSnapshotArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	return s.session.Snapshot(a.Scale)
}

// === Generation Handlers ===

type canvasSetModeArgs struct {
	Mode string `json:"mode"`
}

func (s *Server) handleCanvasSetMode(args json.RawMessage) (interface{}, error) {
	var a canvasSetModeArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	m, err := editor.ParseMode(a.Mode)
	if err != nil {
		return nil, err
	}
	s.session.SetMode(m)
	return s.session.Status(), nil
}

type photoLoadArgs struct {
	Path        string `json:"path"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handlePhotoLoad(args json.RawMessage) (interface{}, error) {
	var a photoLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	switch {
	case a.Path != "" && a.ImageBase64 != "":
		return nil, errors.New("give either path or image_base64, not both")
	case a.Path != "":
		p, err := editor.ReadPhoto(a.Path)
		if err != nil {
			return nil, err
		}
		return s.session.SetPhoto(p), nil
	case a.ImageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(a.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("invalid image_base64: %w", err)
		}
		return s.session.LoadPhoto(data, a.MimeType)
	default:
		return nil, errors.New("path or image_base64 is required")
	}
}

type generateArgs struct {
	Prompt string `json:"prompt"`
}

type generateResult struct {
	Output string `json:"output"`
	// Kind is "base64", "url" or "none".
	Kind  string `json:"kind"`
	Stage string `json:"stage"`
}

func (s *Server) handleGenerate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a generateArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	out, err := s.session.Generate(ctx, a.Prompt)
	if err != nil {
		return nil, err
	}
	return generateResult{
		Output: out,
		Kind:   outputKind(out),
		Stage:  string(s.session.Status().Stage),
	}, nil
}

func outputKind(out string) string {
	switch {
	case out == "":
		return "none"
	case strings.HasPrefix(out, "http://") || strings.HasPrefix(out, "https://"):
		return "url"
	default:
		return "base64"
	}
}
