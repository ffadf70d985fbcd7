package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"chat-sync/auth"
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/errors"
	"chat-sync/services"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping() error
}

type Handler struct {
	authService  services.IAuthService
	chatService  services.IChatService
	store        Pinger
	historyLimit int
	log          *slog.Logger
}

func NewHandler(log *slog.Logger, authService services.IAuthService, chatService services.IChatService, store Pinger, historyLimit int) *Handler {
	if historyLimit <= 0 {
		historyLimit = domain.DefaultHistoryLimit
	}
	return &Handler{
		authService:  authService,
		chatService:  chatService,
		store:        store,
		historyLimit: historyLimit,
		log:          log,
	}
}

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API OK"))
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(); err != nil {
		h.log.WarnContext(r.Context(), "Health check failed", "error", err)
		JSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
		return
	}
	OK(w, contract.OKResponse{OK: true})
}

func (h *Handler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var body contract.AuthRequest
	if err := decode(w, r, &body); err != nil {
		Error(w, err)
		return
	}

	result, err := h.authService.Authenticate(r.Context(), body.Login(), body.Password)
	if err != nil {
		Error(w, err)
		return
	}
	OK(w, contract.AuthResponse{Token: result.Token.String(), UserID: int64(result.UserID), Handle: result.Handle})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		Error(w, errors.ErrUnauthorized)
		return
	}
	OK(w, contract.FromIdentity(identity))
}

func (h *Handler) Users(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		Error(w, errors.ErrUnauthorized)
		return
	}

	peers, err := h.chatService.ListPeers(r.Context(), identity)
	if err != nil {
		Error(w, err)
		return
	}
	OK(w, contract.FromPeers(peers))
}

// History answers GET /messages/history?with=ID&limit=N.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		Error(w, errors.ErrUnauthorized)
		return
	}

	with := queryInt(r, "with", 0)
	if with <= 0 {
		Error(w, errors.ErrMissingPeer)
		return
	}

	messages, err := h.chatService.History(r.Context(), identity, domain.UserID(with), int(queryInt(r, "limit", int64(h.historyLimit))))
	if err != nil {
		Error(w, err)
		return
	}
	OK(w, contract.FromMessages(messages))
}

// Since answers GET /messages/new?with=ID&since_id=N.
func (h *Handler) Since(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		Error(w, errors.ErrUnauthorized)
		return
	}

	with := queryInt(r, "with", 0)
	if with <= 0 {
		Error(w, errors.ErrMissingPeer)
		return
	}

	var sinceID int64
	if raw := r.URL.Query().Get("since_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			Error(w, fmt.Errorf("%w: since_id must be an integer", errors.ErrInvalidInput))
			return
		}
		sinceID = parsed
	}

	messages, err := h.chatService.Since(r.Context(), identity, domain.UserID(with), domain.MessageID(sinceID))
	if err != nil {
		Error(w, err)
		return
	}
	OK(w, contract.FromMessages(messages))
}

func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		Error(w, errors.ErrUnauthorized)
		return
	}

	var body contract.SendRequest
	if err := decode(w, r, &body); err != nil {
		Error(w, err)
		return
	}
	if body.To <= 0 {
		Error(w, fmt.Errorf("%w: missing to", errors.ErrInvalidInput))
		return
	}

	message, err := h.chatService.Send(r.Context(), identity, domain.UserID(body.To), body.Content)
	if err != nil {
		Error(w, err)
		return
	}
	Created(w, contract.SendResponse{OK: true, MessageID: int64(message.ID), Message: contract.FromMessage(message)})
}

// Delete answers DELETE /messages/delete?id=N.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		Error(w, errors.ErrUnauthorized)
		return
	}

	id := queryInt(r, "id", 0)
	if id <= 0 {
		Error(w, fmt.Errorf("%w: missing id", errors.ErrInvalidInput))
		return
	}

	if err := h.chatService.Delete(r.Context(), identity, domain.MessageID(id)); err != nil {
		Error(w, err)
		return
	}
	OK(w, contract.OKResponse{OK: true})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusNotFound, contract.ErrorResponse{Error: contract.ErrorBody{Code: "not_found", Message: "Not Found: " + r.URL.Path}})
}

// decode reads a JSON body. An empty body decodes to the zero value so the
// field validation reports what is missing.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body", errors.ErrInvalidInput)
	}
	return nil
}

// queryInt returns def when the parameter is absent and 0 when it is not a number.
func queryInt(r *http.Request, key string, def int64) int64 {
	raw, ok := r.URL.Query()[key]
	if !ok || len(raw) == 0 {
		return def
	}
	value, err := strconv.ParseInt(raw[0], 10, 64)
	if err != nil {
		return 0
	}
	return value
}
