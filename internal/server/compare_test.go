package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkmathur/partsrecon/internal/async"
	"github.com/nkmathur/partsrecon/internal/common"
	"github.com/nkmathur/partsrecon/internal/export"
	"github.com/nkmathur/partsrecon/internal/pipeline"
	"github.com/nkmathur/partsrecon/internal/runs"
)

func newTestServer(t *testing.T) (*httptest.Server, *async.CompareQueue) {
	t.Helper()
	cfg := common.ServerConfig{
		MaxUploadSizeBytes: 1 << 20,
		RateLimitPerSec:    1000,
		RateLimitBurst:     1000,
	}
	comparator := pipeline.NewComparator(nil, nil, nil, nil)
	store := runs.NewStore(time.Minute)
	queue := async.NewCompareQueue(comparator, store, nil, async.WithWorkers(1))
	srv := NewServer(cfg, nil, comparator, queue, store, export.NewService("₹", nil))

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, queue
}

func multipartBody(t *testing.T, estimate, bill string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("estimate", "estimate.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(estimate))
	require.NoError(t, err)

	fw, err = mw.CreateFormFile("bill", "bill.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(bill))
	require.NoError(t, err)

	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCompareEndpoint(t *testing.T) {
	ts, queue := newTestServer(t)
	defer queue.Shutdown(context.Background())

	body, contentType := multipartBody(t,
		"AB1234 Brake Pad Set 1,500.00\nCD5678 Oil Filter 350.00\n",
		"AB1234 Brake Pad Set 1,750.00\n",
	)

	resp, err := http.Post(ts.URL+"/api/compare", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result pipeline.CompareResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	assert.Equal(t, 2, result.EstimateCount)
	assert.Equal(t, 1, result.BillCount)
	assert.Len(t, result.Results, 2)
}

func TestCompareEndpointNoUsableData(t *testing.T) {
	ts, queue := newTestServer(t)
	defer queue.Shutdown(context.Background())

	body, contentType := multipartBody(t,
		"free text, nothing extractable\nstill nothing\n",
		"AB1234 Brake Pad Set 1,750.00\n",
	)

	resp, err := http.Post(ts.URL+"/api/compare", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCompareEndpointMissingField(t *testing.T) {
	ts, queue := newTestServer(t)
	defer queue.Shutdown(context.Background())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("estimate", "estimate.txt")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("AB1234 Brake Pad Set 1,500.00\n"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(ts.URL+"/api/compare", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAsyncCompareAndExport(t *testing.T) {
	ts, queue := newTestServer(t)
	defer queue.Shutdown(context.Background())

	body, contentType := multipartBody(t,
		"AB1234 Brake Pad Set 1,500.00\n",
		"AB1234 Brake Pad Set 1,750.00\n",
	)

	resp, err := http.Post(ts.URL+"/api/compare/async", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var accepted map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&accepted))
	runID := accepted["run_id"]
	require.NotEmpty(t, runID)

	// Poll until the worker finishes.
	var run runs.Run
	require.Eventually(t, func() bool {
		r, err := http.Get(ts.URL + "/api/runs/" + runID)
		if err != nil {
			return false
		}
		defer r.Body.Close()
		if r.StatusCode != http.StatusOK {
			return false
		}
		if err := json.NewDecoder(r.Body).Decode(&run); err != nil {
			return false
		}
		return run.Status == "DONE" || run.Status == "FAILED"
	}, 5*time.Second, 20*time.Millisecond)

	require.Equal(t, "DONE", string(run.Status))
	require.NotNil(t, run.Result)

	expResp, err := http.Get(ts.URL + "/api/runs/" + runID + "/export")
	require.NoError(t, err)
	defer expResp.Body.Close()
	require.Equal(t, http.StatusOK, expResp.StatusCode)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		expResp.Header.Get("Content-Type"),
	)
	data, err := io.ReadAll(expResp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestGetRunNotFound(t *testing.T) {
	ts, queue := newTestServer(t)
	defer queue.Shutdown(context.Background())

	resp, err := http.Get(ts.URL + "/api/runs/5bb2e6ae-2c1a-4e44-a29c-6a8b64c3a111")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	ts, queue := newTestServer(t)
	defer queue.Shutdown(context.Background())

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
