package firestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitGuardDeliversBeforeStop(t *testing.T) {
	guard := &emitGuard{}
	count := 0

	guard.emit(func() { count++ })
	guard.emit(func() { count++ })

	assert.Equal(t, 2, count)
}

func TestEmitGuardDropsAfterStop(t *testing.T) {
	guard := &emitGuard{}
	count := 0

	guard.emit(func() { count++ })
	guard.stop()
	// 取消后的推送被丢弃
	guard.emit(func() { count++ })
	guard.emit(func() { count++ })

	assert.Equal(t, 1, count)
}
