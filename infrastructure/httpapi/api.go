// Package httpapi serves the read-side of the hub over plain HTTP:
// history, search, stats and the health probe, plus the mount point for
// the live-connection upgrade.
package httpapi

import (
	"encoding/json"
	goerrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"relay-hub/auth"
	"relay-hub/domain"
	"relay-hub/errors"
	"relay-hub/observability"
	"relay-hub/repositories"

	"github.com/julienschmidt/httprouter"
)

type API struct {
	log          *slog.Logger
	verifier     *auth.Verifier
	messages     repositories.IMessageRepository
	calls        repositories.ICallRepository
	search       repositories.ISearchIndex
	monitor      *observability.Monitor
	historyLimit int
}

// NewAPI wires the read-side endpoints. search may be nil when
// full-text search is disabled; the endpoint then answers 404.
func NewAPI(
	log *slog.Logger,
	verifier *auth.Verifier,
	messages repositories.IMessageRepository,
	calls repositories.ICallRepository,
	search repositories.ISearchIndex,
	monitor *observability.Monitor,
	historyLimit int,
) *API {
	return &API{
		log:          log,
		verifier:     verifier,
		messages:     messages,
		calls:        calls,
		search:       search,
		monitor:      monitor,
		historyLimit: historyLimit,
	}
}

// Routes builds the full route table. The upgrade handler is mounted
// here so one listener serves both surfaces.
func (a *API) Routes(upgrade http.Handler) http.Handler {
	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/healthz", a.health)
	router.Handler(http.MethodGet, "/ws", upgrade)
	router.HandlerFunc(http.MethodGet, "/api/history/messages", a.authenticated(a.messageHistory))
	router.HandlerFunc(http.MethodGet, "/api/history/calls", a.authenticated(a.callHistory))
	router.HandlerFunc(http.MethodGet, "/api/search/messages", a.authenticated(a.searchMessages))
	router.HandlerFunc(http.MethodGet, "/api/stats", a.stats)
	return router
}

type authedHandler func(w http.ResponseWriter, r *http.Request, identity string)

// authenticated accepts the token either as a Bearer header or as the
// same `token` query parameter the upgrade endpoint uses.
func (a *API) authenticated(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			token = r.URL.Query().Get("token")
		}

		claims, err := a.verifier.Verify(token)
		if err != nil {
			http.Error(w, "invalid or missing token", http.StatusUnauthorized)
			return
		}
		next(w, r, claims.UserID)
	}
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) stats(w http.ResponseWriter, _ *http.Request) {
	a.writeJSON(w, http.StatusOK, a.monitor.Snapshot())
}

// messageHistory answers three shapes of query: ?group= for a group
// conversation, ?peer= for a one-to-one conversation, neither for the
// caller's own timeline.
func (a *API) messageHistory(w http.ResponseWriter, r *http.Request, identity string) {
	query := r.URL.Query()
	limit := a.limitOf(query.Get("limit"))

	var (
		docs []domain.MessageDocument
		err  error
	)
	switch {
	case query.Get("group") != "":
		docs, err = a.messages.HistoryInGroup(query.Get("group"), limit)
	case query.Get("peer") != "":
		docs, err = a.messages.HistoryWithPeer(identity, query.Get("peer"), limit)
	default:
		docs, err = a.messages.HistoryForUser(identity, limit)
	}
	if err != nil {
		a.log.Error("Failed to load message history", "user", identity, "error", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusOK, orEmpty(docs))
}

func (a *API) callHistory(w http.ResponseWriter, r *http.Request, identity string) {
	docs, err := a.calls.HistoryForUser(identity, a.limitOf(r.URL.Query().Get("limit")))
	if err != nil {
		a.log.Error("Failed to load call history", "user", identity, "error", err)
		http.Error(w, "storage unavailable", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusOK, orEmpty(docs))
}

func (a *API) searchMessages(w http.ResponseWriter, r *http.Request, identity string) {
	if a.search == nil {
		http.Error(w, "search disabled", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	hits, err := a.search.Search(r.Context(), query.Get("q"), a.limitOf(query.Get("limit")))
	if goerrors.Is(err, errors.ErrEmptyQuery) {
		http.Error(w, "missing query parameter q", http.StatusBadRequest)
		return
	}
	if err != nil {
		a.log.Error("Search failed", "user", identity, "error", err)
		http.Error(w, "search unavailable", http.StatusInternalServerError)
		return
	}
	a.writeJSON(w, http.StatusOK, orEmpty(hits))
}

// orEmpty keeps empty results serializing as [] instead of null.
func orEmpty[T any](docs []T) []T {
	if docs == nil {
		return []T{}
	}
	return docs
}

// limitOf caps the page size at the configured history limit; absent or
// unparsable values fall back to it entirely.
func (a *API) limitOf(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > a.historyLimit {
		return a.historyLimit
	}
	return limit
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.log.Error("Failed to encode response", "error", err)
	}
}
