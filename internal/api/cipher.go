package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/logging"
	"github.com/RowanDark/inop/internal/machine"
)

// EncryptRequest asks for a message to be encrypted with the daemon
// settings, or with a stored profile when Profile is set.
type EncryptRequest struct {
	Message string `json:"message"`
	Profile string `json:"profile,omitempty"`
}

// EncryptResponse carries the ciphertext, its display grouping and the
// marker needed to decrypt it.
type EncryptResponse struct {
	Ciphertext string `json:"ciphertext"`
	Blocks     string `json:"blocks"`
	Marker     string `json:"marker,omitempty"`
	Suite      string `json:"suite"`
	RequestID  string `json:"request_id"`
}

// DecryptRequest asks for a ciphertext to be decrypted.
type DecryptRequest struct {
	Ciphertext string `json:"ciphertext"`
	Marker     string `json:"marker,omitempty"`
	Profile    string `json:"profile,omitempty"`
}

// DecryptResponse carries the normalised plaintext and a display form with
// word separators restored.
type DecryptResponse struct {
	Plaintext string `json:"plaintext"`
	Display   string `json:"display"`
	RequestID string `json:"request_id"`
}

// WheelsResponse lists the wheels of one suite.
type WheelsResponse struct {
	Suite      string   `json:"suite"`
	Alphabet   string   `json:"alphabet"`
	Rotors     []string `json:"rotors"`
	Reflectors []string `json:"reflectors"`
}

// ProfileSummary describes a stored profile without its key material.
type ProfileSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Suite       string   `json:"suite"`
}

var errProfileNotFound = errors.New("profile not found")

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req EncryptRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	p, err := s.pipeline(req.Profile)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	ct, marker, err := p.Encrypt(req.Message)
	suite := p.Session().Suite().Name
	if err != nil {
		s.emit(r, logging.EventEncrypt, suite, logging.OutcomeFailure, err, nil)
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.emit(r, logging.EventEncrypt, suite, logging.OutcomeSuccess, nil, map[string]any{
		"symbols": utf8.RuneCountInString(ct),
		"profile": req.Profile,
	})

	s.writeJSON(w, http.StatusOK, EncryptResponse{
		Ciphertext: ct,
		Blocks:     cipher.Blocks(ct, p.Flags().Block),
		Marker:     marker,
		Suite:      suite,
		RequestID:  RequestID(r.Context()),
	})
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req DecryptRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(req.Ciphertext) == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.New("ciphertext field is required"))
		return
	}

	p, err := s.pipeline(req.Profile)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	suite := p.Session().Suite().Name
	pt, err := p.Decrypt(req.Ciphertext, req.Marker)
	if err != nil {
		s.emit(r, logging.EventDecryptFailed, suite, logging.OutcomeFailure, err, nil)
		s.writeError(w, r, statusFor(err), err)
		return
	}
	s.emit(r, logging.EventDecrypt, suite, logging.OutcomeSuccess, nil, map[string]any{
		"symbols": utf8.RuneCountInString(pt),
		"profile": req.Profile,
	})

	s.writeJSON(w, http.StatusOK, DecryptResponse{
		Plaintext: pt,
		Display:   alphabet.Restore(pt),
		RequestID: RequestID(r.Context()),
	})
}

func (s *Server) handleWheels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if name := strings.TrimSpace(r.URL.Query().Get("suite")); name != "" {
		suite, err := alphabet.LookupSuite(name)
		if err != nil {
			s.writeError(w, r, http.StatusNotFound, err)
			return
		}
		s.writeJSON(w, http.StatusOK, s.wheels(suite))
		return
	}
	all := make([]WheelsResponse, 0, len(alphabet.Suites()))
	for _, suite := range alphabet.Suites() {
		all = append(all, s.wheels(suite))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"suites": all})
}

func (s *Server) wheels(suite alphabet.Suite) WheelsResponse {
	return WheelsResponse{
		Suite:      suite.Name,
		Alphabet:   suite.Alphabet.String(),
		Rotors:     s.catalog.Rotors(suite.Name),
		Reflectors: s.catalog.Reflectors(suite.Name),
	}
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	out := make([]ProfileSummary, 0)
	if s.cfg.Profiles != nil {
		for _, p := range s.cfg.Profiles.List() {
			out = append(out, ProfileSummary{
				Name:        p.Name,
				Description: p.Description,
				Tags:        p.Tags,
				Suite:       p.Settings.Suite,
			})
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"profiles": out})
}

// pipeline assembles a fresh pipeline from the daemon settings or from the
// named profile.
func (s *Server) pipeline(profile string) (*cipher.Pipeline, error) {
	settings, flags := s.cfg.Settings, s.cfg.Flags
	if profile != "" {
		if s.cfg.Profiles == nil {
			return nil, fmt.Errorf("%w: %s", errProfileNotFound, profile)
		}
		p, ok := s.cfg.Profiles.Get(profile)
		if !ok {
			return nil, fmt.Errorf("%w: %s", errProfileNotFound, profile)
		}
		settings, flags = p.Settings, p.Flags
	}
	return cipher.NewPipeline(settings, s.catalog, flags,
		cipher.WithLogger(s.logger),
		cipher.WithObserver(s.metrics),
	)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func (s *Server) emit(r *http.Request, event logging.EventType, suite string, outcome logging.Outcome, err error, meta map[string]any) {
	ev := logging.AuditEvent{
		RequestID: RequestID(r.Context()),
		EventType: event,
		Suite:     suite,
		Outcome:   outcome,
		Metadata:  meta,
	}
	if err != nil {
		ev.Reason = err.Error()
	}
	if emitErr := s.audit.Emit(ev); emitErr != nil {
		s.logger.Warn("audit emit failed", slog.Any("error", emitErr))
	}
}

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errProfileNotFound):
		return http.StatusNotFound
	case errors.Is(err, cipher.ErrMarkerNotFound),
		errors.Is(err, machine.ErrInvalidSymbol),
		errors.Is(err, machine.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
