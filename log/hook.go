package log

import (
	"runtime"

	"github.com/rs/zerolog"
)

// stackHook attaches the caller stack to error and higher level events.
type stackHook struct{}

func (h *stackHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	if level < zerolog.ErrorLevel || level == zerolog.NoLevel {
		return
	}

	arr := zerolog.Arr()
	for _, f := range callerFrames(5) {
		arr.Dict(zerolog.Dict().
			Int("line", f.Line).
			Str("file", f.File).
			Str("function", f.Function),
		)
	}
	e.Array("stack", arr)
}

func callerFrames(skip int) []runtime.Frame {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return nil
	}

	var (
		frames = runtime.CallersFrames(pcs[:n])
		out    = make([]runtime.Frame, 0, n)
	)
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			out = append(out, frame)
		}
		if !more {
			break
		}
	}

	return out
}
