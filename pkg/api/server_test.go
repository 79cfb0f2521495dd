package api

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/cbodonnell/replaycipher/pkg/api/handlers"
	"github.com/cbodonnell/replaycipher/pkg/bitcodec"
	"github.com/cbodonnell/replaycipher/pkg/bitstream"
	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/recorder"
	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/cbodonnell/replaycipher/pkg/repositories"
	"github.com/cbodonnell/replaycipher/pkg/repositories/models"
	"github.com/cbodonnell/replaycipher/pkg/spectator"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	router  http.Handler
	manager *spectator.Manager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	ctx := context.Background()
	repo, err := repositories.NewSQLiteRepository(ctx, filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(ctx) })

	selector := cipher.NewSelector(cipher.DefaultDecoderOptions())
	manager := spectator.NewManager(selector)
	return &testAPI{
		router: NewRouter(NewAPIServerOptions{
			Repository: repo,
			Selector:   selector,
			Manager:    manager,
		}),
		manager: manager,
	}
}

func (a *testAPI) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func recordFrames(t *testing.T, strategy cipher.Strategy, message string) []cipher.Frame {
	t.Helper()
	rng := rand.New(rand.NewSource(5))
	opts := cipher.DefaultEncoderOptions()
	opts.Rand = rng
	bits := bitstream.New(message, bitcodec.DefaultCharWidth)
	rec := recorder.New(cipher.NewEncoder(strategy, opts), bits, recorder.Options{LeadInMin: 10, LeadInMax: 20, Rand: rng})
	require.NoError(t, rec.RecordAll(recorder.Path(1500, opts.Bounds, rng)))
	require.True(t, rec.Done())
	return rec.Frames()
}

func TestReplayLifecycle(t *testing.T) {
	api := newTestAPI(t)
	frames := recordFrames(t, cipher.StrategyDecimalPosition, "meet at noon")
	body, err := replay.SerializeReplay(replay.New("", frames))
	require.NoError(t, err)

	resp := api.do(http.MethodPost, "/replays", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var decoded handlers.DecodedReplay
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "meet at noon", decoded.Message)
	assert.Equal(t, cipher.StrategyDecimalPosition.String(), decoded.Strategy)
	assert.Equal(t, len(frames), decoded.Frames)
	assert.Empty(t, decoded.Warning)

	resp = api.do(http.MethodGet, "/replays/"+decoded.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var record models.Replay
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&record))
	assert.Equal(t, decoded.ID, record.ID)
	assert.Equal(t, "meet at noon", record.Message)

	resp = api.do(http.MethodGet, "/replays", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var records []models.Replay
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	require.Len(t, records, 1)

	resp = api.do(http.MethodGet, "/replays/"+decoded.ID.String()+"/data", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	data := resp.Body.Bytes()
	downloaded, err := replay.DeserializeReplay(data)
	require.NoError(t, err)
	assert.Equal(t, frames, downloaded.Frames)
	assert.Equal(t, cipher.StrategyDecimalPosition.String(), downloaded.Strategy)

	// The download keeps its ID, so uploading it again conflicts.
	resp = api.do(http.MethodPost, "/replays", data)
	assert.Equal(t, http.StatusConflict, resp.Code)
	resp = api.do(http.MethodGet, "/replays", nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&records))
	assert.Len(t, records, 1)
}

func TestReplayErrors(t *testing.T) {
	api := newTestAPI(t)

	plain, err := replay.SerializeReplay(replay.New("", []cipher.Frame{{Position: cipher.Position{X: 1, Y: 1}}}))
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   []byte
		status int
	}{
		{name: "garbage body", method: http.MethodPost, path: "/replays", body: []byte("garbage"), status: http.StatusBadRequest},
		{name: "no sync frame", method: http.MethodPost, path: "/replays", body: plain, status: http.StatusUnprocessableEntity},
		{name: "bad id", method: http.MethodGet, path: "/replays/nope", status: http.StatusBadRequest},
		{name: "unknown replay", method: http.MethodGet, path: "/replays/" + uuid.NewString(), status: http.StatusNotFound},
		{name: "unknown replay data", method: http.MethodGet, path: "/replays/" + uuid.NewString() + "/data", status: http.StatusNotFound},
		{name: "bad limit", method: http.MethodGet, path: "/replays?limit=0", status: http.StatusBadRequest},
		{name: "unknown stream", method: http.MethodGet, path: "/streams/" + uuid.NewString() + "/message", status: http.StatusNotFound},
		{name: "preflight", method: http.MethodOptions, path: "/replays", status: http.StatusNoContent},
		{name: "wrong method", method: http.MethodDelete, path: "/replays", status: http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.Code)
		})
	}
}

func TestStreamMessage(t *testing.T) {
	api := newTestAPI(t)
	frames := recordFrames(t, cipher.StrategyLetterMapping, "ok")

	id := uuid.New()
	session := api.manager.GetOrCreate(id)
	session.AddFrames(frames)

	resp := api.do(http.MethodGet, "/streams/"+id.String()+"/message", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var status spectator.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, id, status.ID)
	assert.Equal(t, "ok", status.Message)
	assert.True(t, status.Complete)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))

	resp = api.do(http.MethodGet, "/streams", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var statuses []spectator.Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&statuses))
	assert.Len(t, statuses, 1)
}
