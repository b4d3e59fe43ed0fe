package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/manifoldco/promptui"
)

// Console prints notifications as single lines. Colors follow the theme.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	color  bool
	styles map[Level]func(interface{}) string
}

// NewConsole writes to out. With color disabled lines are plain text.
func NewConsole(out io.Writer, dark bool, color bool) *Console {
	c := &Console{out: out, color: color}
	c.SetDark(dark)
	return c
}

// SetDark switches the palette.
func (c *Console) SetDark(dark bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case !c.color:
		c.styles = nil
	case dark:
		c.styles = map[Level]func(interface{}) string{
			LevelInfo:    promptui.Styler(promptui.FGCyan),
			LevelSuccess: promptui.Styler(promptui.FGGreen, promptui.FGBold),
			LevelError:   promptui.Styler(promptui.FGRed, promptui.FGBold),
		}
	default:
		c.styles = map[Level]func(interface{}) string{
			LevelInfo:    promptui.Styler(promptui.FGBlue),
			LevelSuccess: promptui.Styler(promptui.FGGreen),
			LevelError:   promptui.Styler(promptui.FGRed),
		}
	}
}

func (c *Console) Info(msg string)    { c.print(LevelInfo, msg) }
func (c *Console) Success(msg string) { c.print(LevelSuccess, msg) }
func (c *Console) Error(msg string)   { c.print(LevelError, msg) }

func (c *Console) print(level Level, msg string) {
	line := fmt.Sprintf("[%s] %s", level, msg)

	c.mu.Lock()
	defer c.mu.Unlock()
	if style, ok := c.styles[level]; ok {
		line = style(line)
	}
	fmt.Fprintln(c.out, line)
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Info(msg string) {
	for _, n := range m {
		n.Info(msg)
	}
}

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}
