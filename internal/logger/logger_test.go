package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitJSONByDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(false, buf)

	WithFields(map[string]interface{}{"ip": "1.2.3.4"}).Info("blocked")
	out := buf.String()
	assert.Contains(t, out, `"msg":"blocked"`)
	assert.Contains(t, out, `"ip":"1.2.3.4"`)
}

func TestDebugSuppressedWithoutDebug(t *testing.T) {
	buf := &bytes.Buffer{}
	Init(false, buf)
	Log().Debug("hidden")
	assert.Empty(t, buf.String())

	Init(true, buf)
	Component("security").Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "component=security")
}
