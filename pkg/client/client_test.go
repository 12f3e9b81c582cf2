package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cgsmiles/pkg/errors"
	"github.com/turtacn/cgsmiles/pkg/types/common"
	"github.com/turtacn/cgsmiles/pkg/types/molecule"
)

// ---------------------------------------------------------------------------
// Test Helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func writeEnvelope(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type testLogger struct {
	mu    sync.Mutex
	count int
	last  string
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.log(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.log(format, args...) }
func (l *testLogger) log(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
	l.last = fmt.Sprintf(format, args...)
}

// ---------------------------------------------------------------------------
// Constructor Tests
// ---------------------------------------------------------------------------

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", c.BaseURL())
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "cgsmiles-go-sdk/")
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "ftp://host", "no-scheme", "http://[::1"} {
		_, err := NewClient(u)
		assert.True(t, errors.IsCode(err, errors.ErrCodeConfig), u)
	}
}

func TestOptions(t *testing.T) {
	logger := &testLogger{}
	c, err := NewClient("https://example.org",
		WithTimeout(2*time.Second),
		WithAPIKey("k"),
		WithLogger(logger),
		WithRetryMax(5),
		WithRetryWait(time.Second, 2*time.Second),
		WithUserAgent("custom/1"),
	)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	assert.Equal(t, "k", c.apiKey)
	assert.Same(t, logger, c.logger)
	assert.Equal(t, 5, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 2*time.Second, c.retryWaitMax)
	assert.Equal(t, "custom/1", c.userAgent)

	c, err = NewClient("https://example.org", WithRetryMax(-1), WithRetryWait(time.Second, time.Millisecond), WithUserAgent(""))
	require.NoError(t, err)
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, time.Second, c.retryWaitMin)
	assert.Equal(t, 5*time.Second, c.retryWaitMax, "max below min is ignored")
}

func TestCalculateBackoff(t *testing.T) {
	c, err := NewClient("http://h", WithRetryWait(100*time.Millisecond, 300*time.Millisecond))
	require.NoError(t, err)

	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b3 := c.calculateBackoff(3)
	assert.GreaterOrEqual(t, b3, 300*time.Millisecond, "capped at max")
	assert.Less(t, b3, 375*time.Millisecond)
}

// ---------------------------------------------------------------------------
// Request Tests
// ---------------------------------------------------------------------------

func TestResolve_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/resolve", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req molecule.ResolveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "{[#A]}.{#A=C}", req.Notation)

		writeEnvelope(w, http.StatusOK, common.NewSuccessResponse(molecule.ResolveResponse{
			ResolutionID: "r1",
			Molecule:     molecule.MoleculeDTO{Formula: "CH4"},
		}, r.Header.Get("X-Request-ID")))
	})

	resp, err := c.Resolve(context.Background(), "{[#A]}.{#A=C}")
	require.NoError(t, err)
	assert.Equal(t, "r1", resp.ResolutionID)
	assert.Equal(t, "CH4", resp.Molecule.Formula)
}

func TestResolve_EmptyNotation(t *testing.T) {
	c, err := NewClient("http://h")
	require.NoError(t, err)
	_, err = c.Resolve(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
	_, err = c.Validate(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
	_, err = c.Fragments(context.Background(), "")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestResolve_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusBadRequest,
			common.NewErrorResponse("CGS_001", "unbalanced branch", "fragment=A position=4", "srv-id"))
	})

	_, err := c.Resolve(context.Background(), "{[#A]}.{#A=C(C}")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "fragment=A position=4", apiErr.Detail)
	assert.Equal(t, "srv-id", apiErr.RequestID)
	assert.True(t, errors.IsGrammarError(err))
	assert.Contains(t, err.Error(), "CGS_001")
}

func TestResolve_RetriesServerErrors(t *testing.T) {
	var calls int32
	ids := make(chan string, 4)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ids <- r.Header.Get("X-Request-ID")
		if atomic.AddInt32(&calls, 1) < 3 {
			writeEnvelope(w, http.StatusServiceUnavailable, common.NewErrorResponse("COMMON_008", "service unavailable", "", ""))
			return
		}
		writeEnvelope(w, http.StatusOK, common.NewSuccessResponse(molecule.ValidateResponse{Valid: true}, ""))
	})

	resp, err := c.Validate(context.Background(), "n")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	first := <-ids
	assert.Equal(t, first, <-ids, "retries reuse the request id")
	assert.Equal(t, first, <-ids)
}

func TestResolve_GivesUpAfterRetryMax(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}, WithRetryMax(2))

	_, err := c.Resolve(context.Background(), "n")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestResolve_RateLimited(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			writeEnvelope(w, http.StatusTooManyRequests, common.NewErrorResponse("COMMON_007", "too many requests", "", ""))
			return
		}
		writeEnvelope(w, http.StatusOK, common.NewSuccessResponse(molecule.ResolveResponse{ResolutionID: "ok"}, ""))
	})

	resp, err := c.Resolve(context.Background(), "n")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.ResolutionID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResolve_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, common.NewErrorResponse("COMMON_001", "internal server error", "", ""))
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Resolve(ctx, "n")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFragments(t *testing.T) {
	logger := &testLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/fragments", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, common.NewSuccessResponse([]molecule.TemplateDTO{
			{Name: "PEO", Atoms: 7},
			{Name: "OHter", Atoms: 2},
		}, ""))
	}, WithAPIKey("secret"), WithLogger(logger))

	out, err := c.Fragments(context.Background(), "n")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "OHter", out[1].Name)
	assert.Positive(t, logger.count)
}

func TestAPIError(t *testing.T) {
	e := &APIError{StatusCode: 404, Code: "COMMON_005", Message: "route not found", RequestID: "x"}
	assert.True(t, e.IsNotFound())
	assert.False(t, e.IsRateLimited())
	assert.False(t, e.IsServerError())
	assert.True(t, errors.IsNotFound(e))
	assert.Equal(t, "cgsmiles: COMMON_005 (HTTP 404): route not found [request_id=x]", e.Error())

	assert.Nil(t, (&APIError{StatusCode: 500}).Unwrap())
}
