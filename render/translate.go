package render

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	translatorOnce sync.Once
	translator     *gst.ShaderTranslator
	translatorErr  error
)

func getTranslator() (*gst.ShaderTranslator, error) {
	translatorOnce.Do(func() {
		translator, translatorErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, translatorErr
}

// TranslateFragment converts a GLSL ES 3.00 fragment shader to desktop GLSL
// 3.30. The translator renames identifiers, so the returned map gives the
// name each original uniform ended up with.
func TranslateFragment(source string) (string, map[string]string, error) {
	t, err := getTranslator()
	if err != nil {
		return "", nil, fmt.Errorf("creating shader translator: %w", err)
	}

	shader, err := t.TranslateShader(source, "fragment", gst.ShaderSpecWebGL2, gst.OutputFormatGLSL330)
	if err != nil {
		return "", nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}

	names := make(map[string]string, len(shader.Variables))
	for name, v := range shader.Variables {
		names[name] = v.MappedName
	}
	return shader.Code, names, nil
}
