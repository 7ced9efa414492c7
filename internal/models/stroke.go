package models

// Point is a single sampled pointer position, normalized to [0,1]² so any
// canvas size renders the same picture.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Tool selects how a stroke is applied to the canvas
type Tool string

const (
	// ToolPen draws with the stroke color
	ToolPen Tool = "pen"

	// ToolEraser paints the background color over existing strokes
	ToolEraser Tool = "eraser"
)

// Stroke is one complete pen or eraser gesture, batched and synced as a
// single unit when the pointer is lifted. The stroke sequence on a session is
// append-only; clearing replaces it with an empty sequence.
type Stroke struct {
	// Points is the sampled path of the gesture
	Points []Point `json:"points"`

	// Tool is the applied drawing tool
	Tool Tool `json:"tool"`

	// Color is the stroke color, a CSS color string
	Color string `json:"color"`

	// LineWidth is the brush width in canvas-relative units
	LineWidth float64 `json:"lineWidth"`

	// Timestamp orders strokes for replay, epoch millis
	Timestamp int64 `json:"timestamp"`
}
