package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vinelang/vinec/internal/session"
)

func TestSinkAccumulatesAndReportsErrors(t *testing.T) {
	s := NewSink()
	assert.False(t, s.HasErrors())

	s.Warn(ErrShadowsConst, session.Span{}, "shadowing is discouraged")
	assert.False(t, s.HasErrors())
	assert.Equal(t, 1, s.WarningCount())

	s.Error(ErrUndefinedSymbol, session.Span{File: "a.vn", StartLine: 3, StartColumn: 1}, "undefined symbol %q", "foo")
	assert.True(t, s.HasErrors())
	assert.Equal(t, 1, s.ErrorCount())
	assert.Len(t, s.All(), 2)

	msg := s.All()[1].Error()
	assert.Contains(t, msg, "E001")
	assert.Contains(t, msg, `"foo"`)
}

func TestCountfFormatsThousands(t *testing.T) {
	assert.Equal(t, "1,204", Countf(1204))
}
