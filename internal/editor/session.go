package editor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ironsheep/dudel/internal/canvas"
	"github.com/ironsheep/dudel/internal/generation"
)

// Messages shown when a generate action cannot start or its response is unusable.
var (
	ErrEmptyCanvas  = errors.New("Please draw something before generating!")
	ErrMissingPhoto = errors.New("Photo data or MIME type is missing. Please re-select the photo.")
	ErrNoImageData  = errors.New("No image data to send.")
	ErrInvalidJSON  = errors.New("Invalid JSON returned")
	ErrBusy         = errors.New("a generation is already in progress")
	ErrNoGenerator  = errors.New("no generator configured")
)

// StageIdle is reported before the first generate action.
const StageIdle generation.Stage = "idle"

// Mode selects the generation reference.
type Mode string

const (
	ModeSketch Mode = "sketch"
	ModePhoto  Mode = "photo"
)

// ParseMode resolves a mode name (case-insensitive).
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(name))); m {
	case ModeSketch, ModePhoto:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode: %q", name)
	}
}

// Generator turns a reference image and prompt into a result payload.
// *generation.Service and *api.Client both satisfy it.
type Generator interface {
	Generate(ctx context.Context, req generation.Request) ([]byte, error)
}

// DefaultLayout is used until the first Resize.
var DefaultLayout = canvas.Layout{ContainerWidth: 800, ViewportWidth: 1280, DevicePixelRatio: 1}

// SessionOptions configures NewSession.
type SessionOptions struct {
	Layout    canvas.Layout
	Generator Generator
	// Rand drives the spray tool. Defaults to a randomly seeded PCG.
	Rand   canvas.Rand
	Logger *slog.Logger
	// GenerateTimeout bounds each Generate call. Zero means no limit
	// beyond the caller's context.
	GenerateTimeout time.Duration
}

// Session is one editor: a canvas, its tool state and the generate action.
// It is safe for concurrent use.
type Session struct {
	mu     sync.Mutex
	state  State
	layout canvas.Layout
	buf    *canvas.Buffer
	rng    canvas.Rand
	mode   Mode
	photo  *Photo

	stage   generation.Stage
	result  string
	lastErr string

	busy    atomic.Bool
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewSession creates a session with an empty canvas sized for opts.Layout.
func NewSession(opts SessionOptions) *Session {
	if opts.Layout.ContainerWidth <= 0 || opts.Layout.Validate() != nil {
		opts.Layout = DefaultLayout
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Session{
		state:  DefaultState(),
		rng:    opts.Rand,
		mode:   ModeSketch,
		stage:  StageIdle,
		gen:     opts.Generator,
		timeout: opts.GenerateTimeout,
		logger:  opts.Logger,
	}
	s.resize(opts.Layout)
	return s
}

// Resize reallocates the canvas for a new layout. Existing pixels are
// discarded and any gesture in progress is dropped. A layout that fails
// canvas.Layout.Validate leaves the session untouched.
func (s *Session) Resize(l canvas.Layout) (width, height int, err error) {
	if err := l.Validate(); err != nil {
		return 0, 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resize(l)
	return s.buf.Width(), s.buf.Height(), nil
}

func (s *Session) resize(l canvas.Layout) {
	s.layout = l
	s.buf = canvas.NewBuffer(l.BufferSize())
	s.state.Scale = l.Scale()
	s.state.ResetGesture()
}

// SetTool switches tools and drops any gesture in progress.
func (s *Session) SetTool(t Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Tool = t
	s.state.ResetGesture()
}

// SetColor sets the drawing color from a hex string.
func (s *Session) SetColor(hex string) error {
	c, err := canvas.ParseHexColor(hex)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Color = c
	s.mu.Unlock()
	return nil
}

// SetWidth sets the stroke width in view pixels.
func (s *Session) SetWidth(w float64) error {
	if err := ValidateWidth(w); err != nil {
		return err
	}
	s.mu.Lock()
	s.state.Width = w
	s.mu.Unlock()
	return nil
}

// Pointer applies one pointer event at view position p.
func (s *Session) Pointer(action PointerAction, p canvas.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Apply(&s.state, s.buf.Image(), action, p, s.rng)
}

// Stroke plays a whole gesture: down at the first point, a move to every
// point after it, and up at the last.
func (s *Session) Stroke(points []canvas.Point) error {
	if len(points) == 0 {
		return errors.New("stroke needs at least one point")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	img := s.buf.Image()
	Down(&s.state, img, points[0])
	for _, p := range points[1:] {
		Move(&s.state, img, p, s.rng)
	}
	Up(&s.state, img, points[len(points)-1])
	return nil
}

// Clear erases the canvas and forgets the last result and the loaded photo.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf.Clear()
	s.state.ResetGesture()
	s.result = ""
	s.photo = nil
}

// HasContent reports whether anything is drawn.
func (s *Session) HasContent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.HasContent()
}

// SampleColor reads the canvas pixel at buffer coordinates (x, y).
func (s *Session) SampleColor(x, y int) (*canvas.ColorResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return canvas.SampleColor(s.buf.Image(), x, y)
}

// Snapshot returns the canvas flattened onto white, scaled by scale.
func (s *Session) Snapshot(scale float64) (*canvas.SnapshotResult, error) {
	s.mu.Lock()
	img := s.buf.Clone()
	s.mu.Unlock()
	return canvas.Snapshot(img, scale)
}

// SetMode selects what the generate action sends.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	s.mode = m
	s.mu.Unlock()
}

// LoadPhoto validates and stores the photo used in photo mode.
// A successful load clears the previous error.
func (s *Session) LoadPhoto(data []byte, mimeType string) (*PhotoInfo, error) {
	p, err := DecodePhoto(data, mimeType)
	if err != nil {
		return nil, err
	}
	return s.SetPhoto(p), nil
}

// SetPhoto stores an already decoded photo and clears the previous error.
func (s *Session) SetPhoto(p *Photo) *PhotoInfo {
	s.mu.Lock()
	s.photo = p
	s.lastErr = ""
	s.mu.Unlock()
	info := p.Info
	return &info
}

// Generate sends the current reference and description to the generator and
// returns the selected output (a base64 image or URL; empty when the result
// carried neither).
//
// Only one generation runs at a time; a second call returns ErrBusy.
func (s *Session) Generate(ctx context.Context, description string) (string, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return "", ErrBusy
	}
	defer s.busy.Store(false)

	req, err := s.prepare(description)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
		return "", err
	}
	if s.gen == nil {
		return "", s.fail(ErrNoGenerator)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("generation started", "image_size", req.ImageSize, "bytes", len(req.Image))
	s.setStage(generation.StageProcessing)
	payload, err := s.gen.Generate(ctx, req)
	if err != nil {
		return "", s.fail(err)
	}
	if !gjson.ValidBytes(payload) {
		return "", s.fail(ErrInvalidJSON)
	}

	out, _ := generation.SelectOutput(payload)

	s.mu.Lock()
	s.stage = generation.StageCompleted
	s.result = out
	s.mu.Unlock()
	s.logger.Info("generation completed", "has_output", out != "")
	return out, nil
}

// prepare checks preconditions and builds the request. On success the
// previous result and error are cleared and the stage moves to submitting.
func (s *Session) prepare(description string) (generation.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := generation.Request{Prompt: description}
	switch s.mode {
	case ModePhoto:
		if s.photo == nil || s.photo.Info.MimeType == "" {
			return req, ErrMissingPhoto
		}
		req.Image = base64.StdEncoding.EncodeToString(s.photo.Data)
		req.MimeType = s.photo.Info.MimeType
		req.ImageSize = "photo"
	default:
		if !s.buf.HasContent() {
			return req, ErrEmptyCanvas
		}
		data, err := canvas.EncodePNG(s.buf.Image())
		if err != nil {
			return req, err
		}
		req.Image = base64.StdEncoding.EncodeToString(data)
		req.MimeType = "image/png"
		req.ImageSize = fmt.Sprintf("%dx%d", s.buf.Width(), s.buf.Height())
	}
	if req.Image == "" {
		return req, ErrNoImageData
	}

	s.result = ""
	s.lastErr = ""
	s.stage = generation.StageSubmitting
	return req, nil
}

func (s *Session) setStage(st generation.Stage) {
	s.mu.Lock()
	s.stage = st
	s.mu.Unlock()
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	s.stage = generation.StageFailed
	s.lastErr = err.Error()
	s.mu.Unlock()
	s.logger.Warn("generation failed", "error", err)
	return err
}

// Status is a point-in-time view of the session.
type Status struct {
	Tool       Tool             `json:"tool"`
	Color      string           `json:"color"`
	Width      float64          `json:"width"`
	Mode       Mode             `json:"mode"`
	CanvasW    int              `json:"canvas_width"`
	CanvasH    int              `json:"canvas_height"`
	Scale      float64          `json:"scale"`
	HasContent bool             `json:"has_content"`
	Photo      *PhotoInfo       `json:"photo,omitempty"`
	Generating bool             `json:"generating"`
	Stage      generation.Stage `json:"stage"`
	Result     string           `json:"result,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// Status reports the current session state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Tool:       s.state.Tool,
		Color:      canvas.FormatHexColor(s.state.Color),
		Width:      s.state.Width,
		Mode:       s.mode,
		CanvasW:    s.buf.Width(),
		CanvasH:    s.buf.Height(),
		Scale:      s.state.Scale,
		HasContent: s.buf.HasContent(),
		Generating: s.busy.Load(),
		Stage:      s.stage,
		Result:     s.result,
		Error:      s.lastErr,
	}
	if s.photo != nil {
		info := s.photo.Info
		st.Photo = &info
	}
	return st
}
