package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/linesmerrill/rider-safety-api/logging"
)

func TestNewNamesComponent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	logging.New("scan").Infow("scan finished", "messageId", "abc")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "scan", entries[0].LoggerName)
		assert.Equal(t, "abc", entries[0].ContextMap()["messageId"])
	}
}
