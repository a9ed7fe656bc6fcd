package rod

import (
	"strings"

	"journey-harness/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

// captureConsole forwards console.error calls and uncaught exceptions of page
// to the log sink.
func captureConsole(index int, page *rod.Page, logger output.LoggerPort) {
	wait := page.EachEvent(
		func(e *proto.RuntimeConsoleAPICalled) {
			if e.Type != proto.RuntimeConsoleAPICalledTypeError {
				return
			}
			logger.Error("Browser console error", "page", index, "text", consoleText(e.Args))
		},
		func(e *proto.RuntimeExceptionThrown) {
			logger.Error("Uncaught exception", "page", index, "text", exceptionText(e.ExceptionDetails))
		},
	)
	go wait()
}

func consoleText(args []*proto.RuntimeRemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == nil {
			continue
		}
		parts = append(parts, remoteValue(arg.Value, arg.Description))
	}
	return strings.Join(parts, " ")
}

func remoteValue(v gson.JSON, description string) string {
	if v.Nil() {
		return description
	}
	if s, ok := v.Val().(string); ok {
		return s
	}
	return v.JSON("", "")
}

func exceptionText(d *proto.RuntimeExceptionDetails) string {
	if d == nil {
		return ""
	}
	if d.Exception != nil && d.Exception.Description != "" {
		return d.Exception.Description
	}
	return d.Text
}
