package server

import "github.com/ironsheep/dudel/internal/editor"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func toolNames() []string {
	names := make([]string, len(editor.Tools))
	for i, t := range editor.Tools {
		names[i] = string(t)
	}
	return names
}

var pointSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"x": map[string]interface{}{"type": "number"},
		"y": map[string]interface{}{"type": "number"},
	},
	"required": []string{"x", "y"},
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Canvas setup
		{
			Name:        "canvas_resize",
			Description: "Size the canvas for a container and viewport. The canvas is cleared. Height follows the width at 2:3, or 4:5 when the viewport is narrower than 640px.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"container_width": map[string]interface{}{
						"type":        "number",
						"description": "Canvas width in view pixels",
					},
					"viewport_width": map[string]interface{}{
						"type":        "number",
						"description": "Viewport width in view pixels. Defaults to container_width",
					},
					"device_pixel_ratio": map[string]interface{}{
						"type":        "number",
						"description": "Buffer pixels per view pixel. Default 1",
						"default":     1,
					},
				},
				"required": []string{"container_width"},
			},
		},
		{
			Name:        "canvas_status",
			Description: "Report the current tool, color, width, mode, canvas size, generation stage, last result and last error.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Drawing
		{
			Name:        "canvas_set_tool",
			Description: "Select the drawing tool and optionally the color and stroke width.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tool": map[string]interface{}{
						"type":        "string",
						"enum":        toolNames(),
						"description": "Tool to select",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color (#rgb or #rrggbb)",
					},
					"width": map[string]interface{}{
						"type":        "number",
						"description": "Stroke width in view pixels (1-50)",
						"minimum":     editor.MinWidth,
						"maximum":     editor.MaxWidth,
					},
				},
			},
		},
		{
			Name:        "canvas_pointer",
			Description: "Send one pointer event in view pixels. Fill acts on down; brush, eraser and spray paint on move; line, rect, circle and lasso complete on up. Leave ends a stroke like up.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"action": map[string]interface{}{
						"type": "string",
						"enum": []string{"down", "move", "up", "leave"},
					},
					"x": map[string]interface{}{"type": "number"},
					"y": map[string]interface{}{"type": "number"},
				},
				"required": []string{"action", "x", "y"},
			},
		},
		{
			Name:        "canvas_stroke",
			Description: "Draw a whole gesture with the current tool: down at the first point, move through the rest, up at the last.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"points": map[string]interface{}{
						"type":        "array",
						"items":       pointSchema,
						"minItems":    1,
						"description": "Gesture points in view pixels",
					},
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "canvas_clear",
			Description: "Erase the canvas. Also forgets the last generated result and the loaded photo.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Inspection
		{
			Name:        "canvas_has_content",
			Description: "Report whether any pixel of the canvas has been drawn.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "canvas_sample_color",
			Description: "Get the color at a buffer pixel as hex, RGBA and HSL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate in buffer pixels (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate in buffer pixels (0-based, from top)",
					},
				},
				"required": []string{"x", "y"},
			},
		},
		{
			Name:        "canvas_snapshot",
			Description: "Return the canvas flattened onto white as a base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor. Default 1.0",
						"default":     1.0,
					},
				},
			},
		},

		// Generation
		{
			Name:        "canvas_set_mode",
			Description: "Choose what generate sends: the sketch on the canvas or a loaded photo.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"mode": map[string]interface{}{
						"type": "string",
						"enum": []string{string(editor.ModeSketch), string(editor.ModePhoto)},
					},
				},
				"required": []string{"mode"},
			},
		},
		{
			Name:        "photo_load",
			Description: "Load the reference photo for photo mode, from a file path or from base64 data.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"image_base64": map[string]interface{}{
						"type":        "string",
						"description": "Image bytes, base64-encoded",
					},
					"mime_type": map[string]interface{}{
						"type":        "string",
						"description": "MIME type of image_base64. Detected from the bytes when omitted",
					},
				},
			},
		},
		{
			Name:        "generate",
			Description: "Send the sketch or photo with a description to the image model and wait for the result. Returns the generated image as base64 or a URL.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"prompt": map[string]interface{}{
						"type":        "string",
						"description": "What the picture should show. Optional",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
