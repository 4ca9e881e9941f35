package security

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52}

func TestInspectFile(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		valid    bool
	}{
		{"pdf", "cv.pdf", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"), true},
		{"png", "logo.PNG", pngHeader, true},
		{"plain text", "notes.txt", []byte("hello there, this is text"), true},
		{"json resume", "resume.json", []byte(`{"name":"Jane","skills":["go"]}`), true},
		{"no extension", "README", []byte("hello"), false},
		{"blocked extension", "run.exe", []byte("MZ\x90\x00"), false},
		{"spoofed pdf", "cv.pdf", pngHeader, false},
		{"binary disguised as text", "notes.txt", bytes.Repeat([]byte{0x00, 0x01, 0xFE}, 20), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := InspectFile(tt.filename, tt.data)
			assert.Equal(t, tt.valid, check.Valid, check.Error)
		})
	}
}

func TestCheckExtension(t *testing.T) {
	assert.NoError(t, CheckExtension("a.JPG"))
	assert.Error(t, CheckExtension("a.sh"))
	assert.Error(t, CheckExtension("noext"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j***@example.com", MaskEmail("jane@example.com"))
	assert.Equal(t, "***", MaskEmail("ab"))
	assert.Len(t, MaskEmail("not-an-email"), 16)
}

type recordingSink struct {
	mu     sync.Mutex
	events []AuditEvent
	done   chan struct{}
}

func (s *recordingSink) InsertEvent(_ context.Context, e AuditEvent) error {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	close(s.done)
	return nil
}

func TestAuditLoggerDerivesSeverity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	audit := NewAuditLoggerWith(zap.New(core))
	sink := &recordingSink{done: make(chan struct{})}
	audit.SetSink(sink)

	audit.Record(context.Background(), AuditEvent{
		Event:    EventAdminDenied,
		Severity: SeverityINFO,
		Subject:  MaskEmail("mallory@example.com"),
	})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "admin_denied", entries[0].Message)
	assert.Equal(t, "HIGH", entries[0].ContextMap()["severity"])

	<-sink.done
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.events, 1)
	assert.Equal(t, SeverityHIGH, sink.events[0].Severity)
	assert.False(t, sink.events[0].Timestamp.IsZero())
}

func TestNilAuditLoggerIsNoop(t *testing.T) {
	var audit *AuditLogger
	assert.NotPanics(t, func() {
		audit.Record(context.Background(), AuditEvent{Event: EventJobDeleted})
	})
	assert.NoError(t, audit.Sync())
}
