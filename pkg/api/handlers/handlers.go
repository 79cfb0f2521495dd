package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/cbodonnell/replaycipher/pkg/cipher"
	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/cbodonnell/replaycipher/pkg/repositories"
	"github.com/cbodonnell/replaycipher/pkg/spectator"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DecodedReplay is the response to an uploaded replay.
type DecodedReplay struct {
	ID       uuid.UUID `json:"id"`
	Strategy string    `json:"strategy"`
	Message  string    `json:"message"`
	Frames   int       `json:"frames"`
	// Warning carries a per frame decoding error; the message may be partial.
	Warning string `json:"warning,omitempty"`
}

// HandleCreateReplay decodes an uploaded replay, stores it and returns the
// hidden message.
func HandleCreateReplay(repository repositories.Repository, selector *cipher.Selector) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("failed to read replay: %v", err)
			http.Error(w, "Failed to read replay", http.StatusBadRequest)
			return
		}

		rp, err := replay.DeserializeReplay(body)
		if err != nil {
			log.Error("failed to deserialize replay: %v", err)
			http.Error(w, "Failed to deserialize replay", http.StatusBadRequest)
			return
		}
		if rp.ID == uuid.Nil {
			rp.ID = uuid.New()
		}

		strategy, message, err := selector.Decode(rp.Frames)
		if errors.Is(err, cipher.ErrNoSyncFrame) {
			http.Error(w, "Replay carries no message", http.StatusUnprocessableEntity)
			return
		}
		decoded := DecodedReplay{
			ID:       rp.ID,
			Strategy: strategy.String(),
			Message:  message,
			Frames:   len(rp.Frames),
		}
		if err != nil {
			log.Warn("replay %s decoded with errors: %v", rp.ID, err)
			decoded.Warning = err.Error()
		}
		rp.Strategy = decoded.Strategy

		if _, err := repository.SaveReplay(r.Context(), rp, message); err != nil {
			if repositories.IsAlreadyExists(err) {
				http.Error(w, "Replay already exists", http.StatusConflict)
				return
			}
			log.Error("failed to save replay: %v", err)
			http.Error(w, "Failed to save replay", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, decoded)
	}
}

func HandleListReplays(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				http.Error(w, "Limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		replays, err := repository.ListReplays(r.Context(), limit)
		if err != nil {
			log.Error("failed to list replays: %v", err)
			http.Error(w, "Failed to list replays", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, replays)
	}
}

func HandleGetReplay(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		record, err := repository.GetReplay(r.Context(), id)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Replay not found", http.StatusNotFound)
				return
			}
			log.Error("failed to get replay: %v", err)
			http.Error(w, "Failed to get replay", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}

// HandleDownloadReplay returns the stored replay in its serialized form.
func HandleDownloadReplay(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		rp, err := repository.LoadReplay(r.Context(), id)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Replay not found", http.StatusNotFound)
				return
			}
			log.Error("failed to load replay: %v", err)
			http.Error(w, "Failed to load replay", http.StatusInternalServerError)
			return
		}

		b, err := replay.SerializeReplay(rp)
		if err != nil {
			log.Error("failed to serialize replay: %v", err)
			http.Error(w, "Failed to serialize replay", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(b)
	}
}

func HandleListStreams(manager *spectator.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, manager.List())
	}
}

// HandleGetStreamMessage reports the message decoded so far from a live stream.
func HandleGetStreamMessage(manager *spectator.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		session, ok := manager.Get(id)
		if !ok {
			http.Error(w, "Stream not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, session.Status())
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Failed to parse id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
