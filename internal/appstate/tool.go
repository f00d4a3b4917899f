package appstate

import (
	"fmt"
	"strings"
)

// Tool selects how pointer gestures edit the mask.
type Tool int

const (
	ToolLasso Tool = iota
	ToolBrush
)

func (t Tool) String() string {
	switch t {
	case ToolLasso:
		return "lasso"
	case ToolBrush:
		return "brush"
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

// ParseTool accepts the names printed by Tool.String.
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lasso":
		return ToolLasso, nil
	case "brush", "pencil":
		return ToolBrush, nil
	}
	return ToolLasso, fmt.Errorf("unknown tool %q", s)
}

// Button is the pointer button that drives a gesture.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

func (b Button) String() string {
	switch b {
	case ButtonNone:
		return "none"
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	}
	return fmt.Sprintf("Button(%d)", int(b))
}

// Gesture is the tool state machine's position.
type Gesture int

const (
	Idle Gesture = iota
	BrushDragging
	LassoDragging
)

func (g Gesture) String() string {
	switch g {
	case Idle:
		return "idle"
	case BrushDragging:
		return "brush-dragging"
	case LassoDragging:
		return "lasso-dragging"
	}
	return fmt.Sprintf("Gesture(%d)", int(g))
}
