package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RowanDark/inop/internal/redact"
)

// EventType names what happened to a session or server.
type EventType string

const (
	EventConfigLoaded    EventType = "config_loaded"
	EventSessionOpened   EventType = "session_opened"
	EventSessionRejected EventType = "session_rejected"
	EventEncrypt         EventType = "encrypt"
	EventDecrypt         EventType = "decrypt"
	EventDecryptFailed   EventType = "decrypt_failed"
	EventProfileSaved    EventType = "profile_saved"
	EventProfileDeleted  EventType = "profile_deleted"
	EventServerLifecycle EventType = "server_lifecycle"
)

type Outcome string

const (
	OutcomeInfo    Outcome = "info"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// AuditEvent records one operation. Metadata is redacted before it is
// written; plaintext, markers and key material never reach the trail.
type AuditEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	Component string         `json:"component"`
	RequestID string         `json:"request_id,omitempty"`
	EventType EventType      `json:"event_type"`
	Suite     string         `json:"suite,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Outcome   Outcome        `json:"outcome,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

// NewRequestID returns a random request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// Option adds or removes a destination of the audit trail.
type Option func(*sinks) error

// sinks collects destinations while options run. Stdout is added last,
// unless an option switched it off.
type sinks struct {
	extra    []io.Writer
	files    []*os.File
	noStdout bool
}

func (s *sinks) writer() (io.Writer, error) {
	out := s.extra
	if !s.noStdout {
		out = append([]io.Writer{os.Stdout}, out...)
	}
	switch len(out) {
	case 0:
		return nil, errors.New("audit logger has no destination")
	case 1:
		return out[0], nil
	default:
		return io.MultiWriter(out...), nil
	}
}

func (s *sinks) closeFiles() error {
	var errs []error
	for _, f := range s.files {
		errs = append(errs, f.Close())
	}
	s.files = nil
	return errors.Join(errs...)
}

func WithWriter(w io.Writer) Option {
	return func(s *sinks) error {
		if w == nil {
			return errors.New("audit writer is nil")
		}
		s.extra = append(s.extra, w)
		return nil
	}
}

// WithFile appends events to path, creating it owner-readable only. The
// file is closed by AuditLogger.Close.
func WithFile(path string) Option {
	return func(s *sinks) error {
		path = strings.TrimSpace(path)
		if path == "" {
			return errors.New("audit file path is empty")
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open audit file: %w", err)
		}
		s.files = append(s.files, f)
		s.extra = append(s.extra, f)
		return nil
	}
}

// WithoutStdout keeps events off standard output.
func WithoutStdout() Option {
	return func(s *sinks) error {
		s.noStdout = true
		return nil
	}
}

// trail is the shared, serialised destination behind a logger and every
// logger derived from it.
type trail struct {
	mu    sync.Mutex
	enc   *json.Encoder
	sinks *sinks
}

func (t *trail) write(event AuditEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enc.Encode(event)
}

// AuditLogger writes AuditEvents as JSON lines. It is safe for concurrent
// use; loggers derived with WithComponent share the same trail.
type AuditLogger struct {
	component string
	trail     *trail
	root      bool
}

func NewAuditLogger(component string, opts ...Option) (*AuditLogger, error) {
	s := &sinks{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			_ = s.closeFiles()
			return nil, err
		}
	}
	w, err := s.writer()
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &AuditLogger{
		component: component,
		trail:     &trail{enc: enc, sinks: s},
		root:      true,
	}, nil
}

// Discard returns a logger that drops every event.
func Discard() *AuditLogger {
	logger, _ := NewAuditLogger("discard", WithoutStdout(), WithWriter(io.Discard))
	return logger
}

// Close releases files opened by WithFile. Derived loggers do not own them
// and closing one is a no-op.
func (l *AuditLogger) Close() error {
	if l == nil || l.trail == nil || !l.root {
		return nil
	}
	l.trail.mu.Lock()
	defer l.trail.mu.Unlock()
	return l.trail.sinks.closeFiles()
}

func (l *AuditLogger) Emit(event AuditEvent) error {
	if l == nil || l.trail == nil {
		return errors.New("audit logger is not initialised")
	}
	return l.trail.write(l.prepare(event))
}

// prepare fills defaults and masks secrets.
func (l *AuditLogger) prepare(event AuditEvent) AuditEvent {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Timestamp = event.Timestamp.UTC()
	if event.Component == "" {
		event.Component = l.component
	}
	event.Reason = redact.String(event.Reason)
	if len(event.Metadata) > 0 {
		event.Metadata = redact.Map(event.Metadata)
	}
	return event
}

func (l *AuditLogger) WithComponent(component string) *AuditLogger {
	if l == nil || l.trail == nil {
		return nil
	}
	return &AuditLogger{component: component, trail: l.trail}
}
