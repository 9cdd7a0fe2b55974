package render

import (
	"log"
	"unsafe"

	"github.com/go-gl/gl/v4.6-core/gl"
)

var (
	debugSources = map[uint32]string{
		gl.DEBUG_SOURCE_API:             "api",
		gl.DEBUG_SOURCE_APPLICATION:     "application",
		gl.DEBUG_SOURCE_SHADER_COMPILER: "shaderCompiler",
		gl.DEBUG_SOURCE_THIRD_PARTY:     "thirdParty",
		gl.DEBUG_SOURCE_WINDOW_SYSTEM:   "windowSystem",
	}
	debugTypes = map[uint32]string{
		gl.DEBUG_TYPE_ERROR:               "error",
		gl.DEBUG_TYPE_DEPRECATED_BEHAVIOR: "deprecatedBehavior",
		gl.DEBUG_TYPE_PERFORMANCE:         "performance",
		gl.DEBUG_TYPE_PORTABILITY:         "portability",
		gl.DEBUG_TYPE_UNDEFINED_BEHAVIOR:  "undefinedBehavior",
	}
	debugSeverities = map[uint32]string{
		gl.DEBUG_SEVERITY_HIGH:         "high",
		gl.DEBUG_SEVERITY_MEDIUM:       "medium",
		gl.DEBUG_SEVERITY_LOW:          "low",
		gl.DEBUG_SEVERITY_NOTIFICATION: "notification",
	}
)

// EnableDebugOutput routes GL debug messages to the standard logger.
// Notifications are dropped; drivers send one for every buffer upload.
func EnableDebugOutput() {
	gl.DebugMessageCallback(logDebugMessage, nil)
	gl.Enable(gl.DEBUG_OUTPUT)
	gl.Enable(gl.DEBUG_OUTPUT_SYNCHRONOUS)
}

func logDebugMessage(source, kind, id, severity uint32, length int32, message string, _ unsafe.Pointer) {
	if severity == gl.DEBUG_SEVERITY_NOTIFICATION {
		return
	}
	log.Printf("%v(%v): %v; %v", debugName(debugSources, source), debugName(debugSeverities, severity), debugName(debugTypes, kind), message)
}

func debugName(names map[uint32]string, v uint32) string {
	if name, ok := names[v]; ok {
		return name
	}
	return "other"
}
