// Package batch coalesces high-frequency pointer input into discrete stroke
// records. Points are painted locally the moment they arrive; the network
// only ever sees one write per completed gesture, so write volume is bounded
// by brush strokes instead of input sampling rate.
package batch

import (
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/spillkveld/minispill/internal/models"
)

// FlushFunc receives the completed stroke exactly once, at pointer-up.
// Implementations typically call the drawing service's AppendStroke.
type FlushFunc func(models.Stroke) error

// LocalFunc receives each point as it is captured, for zero-latency local
// canvas feedback. May be nil.
type LocalFunc func(models.Point)

// Config holds configuration for a Batcher
type Config struct {
	// Clock timestamps completed strokes
	Clock clockwork.Clock

	// Logger for flush failures; defaults to a no-op logger
	Logger zerolog.Logger

	// Flush receives each completed stroke
	Flush FlushFunc

	// Local receives each captured point immediately; may be nil
	Local LocalFunc
}

// Batcher accumulates one in-progress stroke at a time. It is only consumed
// from the input event loop and is not safe for concurrent use; none is
// needed, pointer events arrive serially.
type Batcher struct {
	clock  clockwork.Clock
	logger zerolog.Logger
	flush  FlushFunc
	local  LocalFunc

	tool      models.Tool
	color     string
	lineWidth float64

	points  []models.Point
	drawing bool
}

// NewBatcher creates a stroke batcher drawing with a pen until told otherwise
func NewBatcher(cfg *Config) (*Batcher, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.Clock == nil {
		return nil, errors.New("clock cannot be nil")
	}
	if cfg.Flush == nil {
		return nil, errors.New("flush func cannot be nil")
	}

	return &Batcher{
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		flush:     cfg.Flush,
		local:     cfg.Local,
		tool:      models.ToolPen,
		color:     "#000000",
		lineWidth: 4,
	}, nil
}

// SetBrush changes the tool, color and width used for subsequent strokes.
// The in-progress stroke, if any, keeps the brush it started with.
func (b *Batcher) SetBrush(tool models.Tool, color string, lineWidth float64) {
	if b.drawing {
		return
	}
	b.tool = tool
	b.color = color
	b.lineWidth = lineWidth
}

// PointerDown begins a stroke at the given normalized position
func (b *Batcher) PointerDown(x, y float64) {
	b.drawing = true
	b.points = b.points[:0]
	b.capture(x, y)
}

// PointerMove extends the in-progress stroke; ignored when no stroke is open
func (b *Batcher) PointerMove(x, y float64) {
	if !b.drawing {
		return
	}
	b.capture(x, y)
}

// PointerUp completes the stroke and flushes it as a single record. Empty
// strokes are dropped. The flush error is returned so the UI can surface a
// retryable failure; the local canvas already shows the stroke either way.
func (b *Batcher) PointerUp() error {
	if !b.drawing {
		return nil
	}
	b.drawing = false

	if len(b.points) == 0 {
		return nil
	}

	stroke := models.Stroke{
		Points:    append([]models.Point(nil), b.points...),
		Tool:      b.tool,
		Color:     b.color,
		LineWidth: b.lineWidth,
		Timestamp: b.clock.Now().UnixMilli(),
	}
	b.points = b.points[:0]

	if err := b.flush(stroke); err != nil {
		b.logger.Warn().Err(err).Int("points", len(stroke.Points)).Msg("stroke flush failed")
		return err
	}
	return nil
}

// capture clamps the position into [0,1]² and records it
func (b *Batcher) capture(x, y float64) {
	point := models.Point{X: clamp01(x), Y: clamp01(y)}
	b.points = append(b.points, point)
	if b.local != nil {
		b.local(point)
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
