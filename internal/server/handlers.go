package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/abhisek/spansk/internal/logger"
	"github.com/abhisek/spansk/internal/progress"
	"github.com/abhisek/spansk/internal/rewards"
	"github.com/abhisek/spansk/internal/stats"
	"github.com/abhisek/spansk/internal/store"
)

// maxBodyBytes bounds request bodies on write routes.
const maxBodyBytes = 1 << 20

// StatsResponse is the body of the stats routes.
type StatsResponse struct {
	UserID       string                `json:"user_id"`
	Stats        *stats.UserStats      `json:"stats"`
	Achievements []rewards.Achievement `json:"achievements"`
}

// LeaderboardResponse is the body of the leaderboard route.
type LeaderboardResponse struct {
	Entries []stats.LeaderboardEntry `json:"entries"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.backend.Ping(ctx); err != nil {
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "database connection failed",
		})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "spansk",
	})
}

func (s *Server) getMyStats(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	s.writeStats(w, r, userID)
}

func (s *Server) getUserStats(w http.ResponseWriter, r *http.Request) {
	s.writeStats(w, r, mux.Vars(r)["userID"])
}

func (s *Server) writeStats(w http.ResponseWriter, r *http.Request, userID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	st, err := s.stats.CalculateUserStats(ctx, userID)
	if err != nil {
		logger.Error("stats for %s: %v", userID, err)
		respondWithError(w, http.StatusServiceUnavailable, "Stats are temporarily unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, StatsResponse{
		UserID:       userID,
		Stats:        st,
		Achievements: st.Achievements(s.now()),
	})
}

func (s *Server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	limit := store.MaxProfiles
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "Query parameter 'limit' must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.ranker.CalculateLeaderboard(ctx, limit)
	if err != nil {
		logger.Error("leaderboard: %v", err)
		respondWithError(w, http.StatusServiceUnavailable, "Leaderboard is temporarily unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, LeaderboardResponse{Entries: entries})
}

type progressRequest struct {
	ExerciseID      string          `json:"exercise_id"`
	Score           int             `json:"score"`
	QuestionResults json.RawMessage `json:"question_results,omitempty"`
}

func (s *Server) postProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, _ := UserID(ctx)

	var req progressRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	attempt := progress.Attempt{
		UserID:          userID,
		ExerciseID:      strings.TrimSpace(req.ExerciseID),
		Score:           req.Score,
		QuestionResults: req.QuestionResults,
	}
	rec, err := s.backend.RecordAttempt(ctx, attempt, s.cfg.CompletionThreshold, s.now())
	if err != nil {
		if errors.Is(err, progress.ErrInvalidAttempt) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("record attempt for %s: %v", userID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to record progress")
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

func (s *Server) getUserProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID := mux.Vars(r)["userID"]
	records, err := s.backend.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("list progress for %s: %v", userID, err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}
	if records == nil {
		records = []progress.Record{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

type profileRequest struct {
	DisplayName string `json:"display_name"`
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req profileRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "display_name is required")
		return
	}

	p, err := s.backend.UpsertProfile(ctx, store.Profile{ID: mux.Vars(r)["userID"], DisplayName: name})
	if err != nil {
		logger.Error("upsert profile: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}
	respondWithJSON(w, http.StatusOK, p)
}
