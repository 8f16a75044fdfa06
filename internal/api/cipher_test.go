package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/inop/internal/cipher"
)

func TestEncryptKnownVector(t *testing.T) {
	srv := setupTestServer(t, func(c *Config) { c.Flags = singlePass() })

	rr := do(t, srv.Handler(), http.MethodPost, "/api/v1/inop/encrypt", `{"message":"aaaaa"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp EncryptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "BDZGO", resp.Ciphertext)
	assert.Equal(t, "BDZGO", resp.Blocks)
	assert.Empty(t, resp.Marker)
	assert.Equal(t, "Legacy", resp.Suite)
	assert.Equal(t, rr.Header().Get(requestIDHeader), resp.RequestID)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	srv := setupTestServer(t, nil)
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/api/v1/inop/encrypt", `{"message":"Meet me at noon"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var enc EncryptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &enc))
	require.Len(t, enc.Marker, 5)

	body, err := json.Marshal(DecryptRequest{Ciphertext: enc.Blocks, Marker: enc.Marker})
	require.NoError(t, err)
	rr = do(t, h, http.MethodPost, "/api/v1/inop/decrypt", string(body), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var dec DecryptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &dec))
	assert.Equal(t, "MEETMEATNOON", dec.Plaintext)
	assert.Equal(t, "MEETMEATNOON", dec.Display)

	audit := srv.audit.String()
	assert.Contains(t, audit, `"event_type":"encrypt"`)
	assert.Contains(t, audit, `"event_type":"decrypt"`)
	assert.Contains(t, audit, enc.RequestID)
	assert.NotContains(t, audit, enc.Marker)
}

func TestEncryptWithProfile(t *testing.T) {
	srv := setupTestServer(t, nil)
	flags := singlePass()
	require.NoError(t, srv.cfg.Profiles.Save(&cipher.Profile{
		Name:        "field",
		Description: "field unit key",
		Tags:        []string{"legacy"},
		Settings:    legacySettings(),
		Flags:       flags,
	}))
	h := srv.Handler()

	rr := do(t, h, http.MethodPost, "/api/v1/inop/encrypt", `{"message":"AAAAA","profile":"field"}`, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var enc EncryptResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &enc))
	assert.Equal(t, "BDZGO", enc.Ciphertext)

	rr = do(t, h, http.MethodGet, "/api/v1/inop/profiles", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"field"`)
	assert.Contains(t, rr.Body.String(), `"suite":"Legacy"`)
	assert.NotContains(t, rr.Body.String(), "AAAA")
}

func TestCipherErrorStatusCodes(t *testing.T) {
	srv := setupTestServer(t, nil)
	h := srv.Handler()

	tests := []struct {
		name       string
		endpoint   string
		method     string
		payload    string
		wantStatus int
	}{
		{"encrypt malformed json", "/api/v1/inop/encrypt", http.MethodPost, `{"message":`, http.StatusBadRequest},
		{"encrypt unknown field", "/api/v1/inop/encrypt", http.MethodPost, `{"msg":"HI"}`, http.StatusBadRequest},
		{"encrypt unknown profile", "/api/v1/inop/encrypt", http.MethodPost, `{"message":"HI","profile":"nope"}`, http.StatusNotFound},
		{"encrypt wrong method", "/api/v1/inop/encrypt", http.MethodGet, ``, http.StatusMethodNotAllowed},
		{"decrypt empty ciphertext", "/api/v1/inop/decrypt", http.MethodPost, `{"ciphertext":"  ","marker":"ABCDE"}`, http.StatusBadRequest},
		{"decrypt invalid symbol", "/api/v1/inop/decrypt", http.MethodPost, `{"ciphertext":"AB1CD","marker":"ABCDE"}`, http.StatusUnprocessableEntity},
		{"decrypt missing marker", "/api/v1/inop/decrypt", http.MethodPost, `{"ciphertext":"ABCDEFGHIJ"}`, http.StatusUnprocessableEntity},
		{"wheels unknown suite", "/api/v1/inop/wheels?suite=INOP-99", http.MethodGet, ``, http.StatusNotFound},
		{"wheels wrong method", "/api/v1/inop/wheels", http.MethodPost, `{}`, http.StatusMethodNotAllowed},
		{"profiles wrong method", "/api/v1/inop/profiles", http.MethodDelete, ``, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.endpoint, tt.payload, nil)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}

	assert.Contains(t, srv.audit.String(), `"event_type":"decrypt_failed"`)
}

func TestDecryptRejectsOversizedBody(t *testing.T) {
	srv := setupTestServer(t, func(c *Config) { c.MaxBodyBytes = 64 })
	payload := `{"ciphertext":"` + strings.Repeat("A", 128) + `"}`
	rr := do(t, srv.Handler(), http.MethodPost, "/api/v1/inop/decrypt", payload, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWheelsListing(t *testing.T) {
	srv := setupTestServer(t, nil)
	h := srv.Handler()

	rr := do(t, h, http.MethodGet, "/api/v1/inop/wheels?suite=inop-38", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var one WheelsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &one))
	assert.Equal(t, "INOP-38", one.Suite)
	assert.Len(t, one.Alphabet, 38)
	assert.Contains(t, one.Rotors, "R1")
	assert.Contains(t, one.Reflectors, "D")

	rr = do(t, h, http.MethodGet, "/api/v1/inop/wheels", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var all struct {
		Suites []WheelsResponse `json:"suites"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	require.Len(t, all.Suites, 3)
	assert.Equal(t, "Legacy", all.Suites[0].Suite)
	assert.Contains(t, all.Suites[0].Rotors, "III")
}

func TestConcurrentEncryptRequests(t *testing.T) {
	srv := setupTestServer(t, func(c *Config) { c.Flags = singlePass() })
	h := srv.Handler()

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rr := do(t, h, http.MethodPost, "/api/v1/inop/encrypt", `{"message":"HELLOWORLD"}`, nil)
			var resp EncryptResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err == nil {
				results[i] = resp.Ciphertext
			}
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, results[0], got)
	}
	assert.NotEmpty(t, results[0])
}
