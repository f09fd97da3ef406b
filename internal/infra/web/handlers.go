package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/registry"
	"nexus-ai-chat/internal/usecase"
)

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type identityResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// chatStateResponse is the orchestrator snapshot as the front-end sees it.
type chatStateResponse struct {
	SessionID    string           `json:"session_id,omitempty"`
	Title        string           `json:"title,omitempty"`
	Turns        []model.ChatTurn `json:"turns"`
	Model        string           `json:"model"`
	PendingInput string           `json:"pending_input"`
	HasImage     bool             `json:"has_image"`
	RecentPrompt string           `json:"recent_prompt"`
	RevealBuffer string           `json:"reveal_buffer"`
	RevealCursor int              `json:"reveal_cursor"`
	Awaiting     bool             `json:"awaiting"`
	ShowResult   bool             `json:"show_result"`
}

func toChatState(snap usecase.Snapshot) chatStateResponse {
	resp := chatStateResponse{
		Model:        snap.Model.ID,
		PendingInput: snap.PendingInput,
		HasImage:     snap.HasImage,
		RecentPrompt: snap.RecentPrompt,
		RevealBuffer: snap.RevealBuffer,
		RevealCursor: snap.RevealCursor,
		Awaiting:     snap.Awaiting,
		ShowResult:   snap.ShowResult,
		Turns:        []model.ChatTurn{},
	}
	if snap.Session != nil {
		resp.SessionID = snap.RemoteID
		resp.Title = snap.Session.Title
		resp.Turns = snap.Session.Turns
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrExchangeInFlight), errors.Is(err, domain.ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrEmptyPrompt),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrUnknownModel):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrNotSignedIn), errors.Is(err, domain.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

// ===== auth =====

func (s *Server) handleSignUp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		st := clientState(r)
		id, err := st.Auth.SignUp(r.Context(), req.Email, req.Password, req.DisplayName)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if _, err := s.auth.Mint(w, id.ID); err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, identityResponse{ID: id.ID, Email: id.Email, DisplayName: id.DisplayName})
	}
}

func (s *Server) handleSignIn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		st := clientState(r)
		id, err := st.Auth.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if _, err := s.auth.Mint(w, id.ID); err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, identityResponse{ID: id.ID, Email: id.Email, DisplayName: id.DisplayName})
	}
}

func (s *Server) handleSignOut() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientState(r).Auth.SignOut()
		s.auth.Clear(w)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := clientState(r).Auth.Identity()
		if id == nil {
			http.Error(w, "Not signed in", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, identityResponse{ID: id.ID, Email: id.Email, DisplayName: id.DisplayName})
	}
}

// ===== catalog =====

func (s *Server) handleModels() http.HandlerFunc {
	type modelRow struct {
		ID           string   `json:"id"`
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		Provider     string   `json:"provider"`
		Capabilities []string `json:"capabilities"`
		Free         bool     `json:"free"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []modelRow
		for _, m := range registry.List() {
			rows = append(rows, modelRow{
				ID:           m.ID,
				Name:         m.DisplayName,
				Description:  m.Description,
				Provider:     m.Provider,
				Capabilities: m.Capabilities,
				Free:         m.Free,
			})
		}
		writeJSON(w, http.StatusOK, struct {
			Data    []modelRow `json:"data"`
			Default string     `json:"default"`
		}{Data: rows, Default: registry.DefaultModelID})
	}
}

func (s *Server) handleTemplates() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, struct {
			Data []registry.TemplateCategory `json:"data"`
		}{Data: registry.Templates()})
	}
}

// ===== chat =====

func (s *Server) handleChatState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, toChatState(clientState(r).Orch.Snapshot()))
	}
}

func (s *Server) handleSend() http.HandlerFunc {
	type sendRequest struct {
		Prompt string `json:"prompt,omitempty"` // overrides staged input when set
		Model  string `json:"model,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
		}
		st := clientState(r)
		if req.Model != "" {
			if err := st.Orch.SetModel(req.Model); err != nil {
				writeDomainError(w, err)
				return
			}
		}
		if err := st.Orch.Send(r.Context(), req.Prompt); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, toChatState(st.Orch.Snapshot()))
	}
}

// handleStream pushes reveal events over SSE until the client disconnects.
func (s *Server) handleStream() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fl, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}
		ch, unsub := clientState(r).Orch.Subscribe()
		defer unsub()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fl.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-ch:
				b, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "data: %s\n\n", b)
				fl.Flush()
			}
		}
	}
}

func (s *Server) handleNewChat() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := clientState(r)
		st.Orch.NewChat()
		writeJSON(w, http.StatusOK, toChatState(st.Orch.Snapshot()))
	}
}

func (s *Server) handleSetInput() http.HandlerFunc {
	type inputRequest struct {
		Text string `json:"text"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req inputRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		clientState(r).Orch.SetInput(req.Text)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleSetModel() http.HandlerFunc {
	type modelRequest struct {
		Model string `json:"model"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req modelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := clientState(r).Orch.SetModel(req.Model); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleSetParams() http.HandlerFunc {
	type paramsRequest struct {
		Preset string `json:"preset"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req paramsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := clientState(r).Orch.SetParams(req.Preset); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

const maxImageForm = 10 << 20 // form parse ceiling; the store enforces its own cap

func (s *Server) handleAttachImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxImageForm); err != nil {
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}
		file, hdr, err := r.FormFile("image")
		if err != nil {
			http.Error(w, "Missing image field", http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxImageForm+1))
		if err != nil {
			http.Error(w, "Failed to read upload", http.StatusBadRequest)
			return
		}
		if err := clientState(r).Orch.AttachImage(hdr.Filename, data); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleClearImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientState(r).Orch.ClearImage()
		w.WriteHeader(http.StatusNoContent)
	}
}

// ===== sessions =====

func (s *Server) handleListSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := clientState(r)
		if st.Auth.Identity() == nil {
			http.Error(w, "Not signed in", http.StatusUnauthorized)
			return
		}
		if err := st.Auth.RefreshSummaries(r.Context()); err != nil {
			http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Data []model.SessionSummary `json:"data"`
		}{Data: st.Auth.Summaries()})
	}
}

func (s *Server) handleLoadSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		sess, err := clientState(r).Orch.LoadSession(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func (s *Server) handleDeleteSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := clientState(r).Auth.DeleteSession(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ===== history & theme =====

func (s *Server) handleHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := clientState(r).Orch.History(r.Context(), limit)
		if err != nil {
			http.Error(w, "Failed to load history", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []model.HistoryEntry{}
		}
		writeJSON(w, http.StatusOK, struct {
			Data []model.HistoryEntry `json:"data"`
		}{Data: entries})
	}
}

func (s *Server) handleGetTheme() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		theme, err := s.history.Theme(r.Context(), clientID(r))
		if err != nil {
			http.Error(w, "Failed to load theme", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Theme string `json:"theme"`
		}{Theme: theme})
	}
}

func (s *Server) handleSetTheme() http.HandlerFunc {
	type themeRequest struct {
		Theme string `json:"theme"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req themeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := s.history.SetTheme(r.Context(), clientID(r), req.Theme); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
