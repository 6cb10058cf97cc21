// Package detector handles frontend detection.
package detector

import (
	"os"
	"runtime"

	"github.com/retroenv/chip8vm/internal/options"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// Environment describes the output capabilities of the host.
type Environment struct {
	Display  bool // a graphical display is available
	Terminal bool // stdin and stdout are connected to a terminal
}

// HostEnvironment returns the capabilities of the running process.
func HostEnvironment() Environment {
	display := runtime.GOOS == "windows" || runtime.GOOS == "darwin" ||
		os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""

	return Environment{
		Display:  display,
		Terminal: term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Detector handles frontend detection from options and the host environment.
type Detector struct {
	logger *log.Logger
}

// New creates a new frontend detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the frontend to use. An explicitly selected frontend is
// returned as is, otherwise the window is preferred over the terminal and
// the headless mode is the fallback.
func (d *Detector) Detect(frontend string, env Environment) string {
	if frontend != options.FrontendAuto && frontend != "" {
		return frontend
	}

	switch {
	case env.Display:
		frontend = options.FrontendWindow
	case env.Terminal:
		frontend = options.FrontendTerminal
	default:
		frontend = options.FrontendHeadless
	}

	d.logger.Debug("Auto-detected frontend",
		log.String("frontend", frontend))
	return frontend
}
