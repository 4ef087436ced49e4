package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
	"github.com/teamsense-lab/argus/pkg/usecase"
	"github.com/teamsense-lab/argus/pkg/utils/errutil"
)

const (
	userIDHeader = "X-User-ID"
	orgIDHeader  = "X-Org-ID"
	defaultOrgID = "default"

	stateCookieName = "argus_oauth_state"
	stateCookieTTL  = 10 * time.Minute
)

func requestUser(r *http.Request) (types.UserID, types.OrgID, error) {
	userID := types.UserID(r.Header.Get(userIDHeader))
	if !userID.IsValid() {
		return "", "", goerr.New("missing user header", goerr.V("header", userIDHeader))
	}

	orgID := types.OrgID(r.Header.Get(orgIDHeader))
	if orgID == "" {
		orgID = defaultOrgID
	}
	return userID, orgID, nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps use case errors to HTTP statuses
func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrNotConnected):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrCodeConsumed):
		return http.StatusConflict
	case errors.Is(err, usecase.ErrAuthNotConfigured), errors.Is(err, usecase.ErrChatNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) connectHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	flow, err := s.uc.StartAuthFlow(r.Context(), userID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	// The state round-trips through a cookie so the callback can reject
	// forged redirects
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    flow.State,
		Path:     "/api/integrations/tracker",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, map[string]string{
		"url": flow.URL,
	})
}

func (s *Server) callbackHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		errutil.HandleHTTP(r.Context(), w, goerr.New("missing code or state parameter"), http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value != state {
		errutil.HandleHTTP(r.Context(), w, goerr.New("state mismatch"), http.StatusBadRequest)
		return
	}

	// Consume the state cookie
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/api/integrations/tracker",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	record, err := s.uc.CompleteAuthFlow(r.Context(), userID, code)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"connected":      true,
		"workspace_id":   record.WorkspaceID,
		"workspace_name": record.WorkspaceName,
		"workspace_url":  record.WorkspaceURL,
	})
}

func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	status, err := s.uc.IntegrationStatus(r.Context(), userID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"connected":      status.Connected,
		"workspace_id":   status.WorkspaceID,
		"workspace_name": status.WorkspaceName,
		"workspace_url":  status.WorkspaceURL,
		"source":         status.Source,
		"expires_at":     status.ExpiresAt,
	})
}

func (s *Server) disconnectHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	if err := s.uc.Disconnect(r.Context(), userID); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"disconnected": true})
}

func (s *Server) teamsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	teams, err := s.uc.ListTeams(r.Context(), userID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	type teamResponse struct {
		ID   types.TeamID `json:"id"`
		Name string       `json:"name"`
		Key  string       `json:"key"`
	}
	resp := make([]teamResponse, len(teams))
	for i, t := range teams {
		resp[i] = teamResponse{ID: t.ID, Name: t.Name, Key: t.Key}
	}

	respondJSON(w, http.StatusOK, map[string]any{"teams": resp})
}

func (s *Server) workloadHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	report, err := s.uc.GetWorkloadPreview(r.Context(), userID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	type ticketResponse struct {
		ID           string `json:"id"`
		Identifier   string `json:"identifier"`
		Title        string `json:"title"`
		Priority     int    `json:"priority"`
		PriorityName string `json:"priority_name"`
		DueDate      string `json:"due_date,omitempty"`
		State        string `json:"state"`
	}
	type assigneeResponse struct {
		ID      types.AccountID  `json:"id"`
		Name    string           `json:"name"`
		Email   string           `json:"email"`
		Count   int              `json:"count"`
		Score   float64          `json:"contribution_score"`
		Tickets []ticketResponse `json:"tickets"`
		ByLevel map[int]int      `json:"priorities"`
	}
	assignees := make([]assigneeResponse, len(report.Preview.Assignees))
	for i, a := range report.Preview.Assignees {
		tickets := make([]ticketResponse, len(a.Tickets))
		for j, ticket := range a.Tickets {
			tickets[j] = ticketResponse{
				ID:           ticket.ID,
				Identifier:   ticket.Identifier,
				Title:        ticket.Title,
				Priority:     ticket.Priority,
				PriorityName: ticket.PriorityName,
				DueDate:      ticket.DueDate,
				State:        ticket.State,
			}
		}
		assignees[i] = assigneeResponse{
			ID:      a.AssigneeID,
			Name:    a.Name,
			Email:   a.Email,
			Count:   a.Count,
			Score:   report.Scores[a.AssigneeID],
			Tickets: tickets,
			ByLevel: a.Priorities,
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total_records": report.Preview.TotalRecords,
		"partial":       report.Preview.Partial,
		"assignees":     assignees,
	})
}

func (s *Server) listMappingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	mappings, err := s.uc.ListMappings(r.Context(), userID)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"mappings": mappingResponses(mappings),
	})
}

type mappingResponse struct {
	Source     string            `json:"source"`
	Platform   types.Platform    `json:"platform"`
	TargetID   types.AccountID   `json:"target_id"`
	TargetName string            `json:"target_name"`
	Type       types.MappingType `json:"type"`
	Confidence float64           `json:"confidence"`
	Success    bool              `json:"success"`
	VerifiedAt time.Time         `json:"verified_at"`
}

func mappingResponses(mappings []*model.IdentityMapping) []mappingResponse {
	resp := make([]mappingResponse, len(mappings))
	for i, m := range mappings {
		resp[i] = toMappingResponse(m)
	}
	return resp
}

func toMappingResponse(m *model.IdentityMapping) mappingResponse {
	return mappingResponse{
		Source:     m.SourceIdentifier,
		Platform:   m.TargetPlatform,
		TargetID:   m.TargetIdentifier,
		TargetName: m.TargetName,
		Type:       m.Type,
		Confidence: m.Confidence,
		Success:    m.Success,
		VerifiedAt: m.LastVerifiedAt,
	}
}

func (s *Server) assignMappingHandler(w http.ResponseWriter, r *http.Request) {
	userID, orgID, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	var req struct {
		Email      string `json:"email"`
		Platform   string `json:"platform"`
		TargetID   string `json:"target_id"`
		TargetName string `json:"target_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	platform := types.Platform(req.Platform)
	if req.Email == "" || req.TargetID == "" || !platform.IsValid() {
		errutil.HandleHTTP(r.Context(), w, goerr.New("email, platform and target_id are required"), http.StatusBadRequest)
		return
	}

	mapping, err := s.uc.AssignManual(r.Context(), userID, orgID, req.Email, platform, types.AccountID(req.TargetID), req.TargetName)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	respondJSON(w, http.StatusOK, toMappingResponse(mapping))
}

func (s *Server) autoMapHandler(w http.ResponseWriter, r *http.Request) {
	userID, orgID, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	// Member records are optional; without them the chat directory is used
	var req struct {
		Members []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"members"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
			return
		}
	}

	var members []model.ExternalIdentity
	for _, m := range req.Members {
		members = append(members, model.ExternalIdentity{
			ID:     types.AccountID(m.ID),
			Email:  m.Email,
			Name:   m.Name,
			Active: true,
		})
	}

	result, err := s.uc.AutoMapUsers(r.Context(), userID, orgID, members)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"total":     result.Total,
		"matched":   result.Matched,
		"unmatched": result.Unmatched,
		"mappings":  mappingResponses(result.Mappings),
	})
}

func (s *Server) unmapHandler(w http.ResponseWriter, r *http.Request) {
	userID, _, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return
	}

	platform := types.Platform(req.Platform)
	if req.Email == "" || !platform.IsValid() {
		errutil.HandleHTTP(r.Context(), w, goerr.New("email and platform are required"), http.StatusBadRequest)
		return
	}

	if err := s.uc.Unmap(r.Context(), userID, req.Email, platform); err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"unmapped": true})
}

func (s *Server) resolveHandler(w http.ResponseWriter, r *http.Request) {
	userID, orgID, err := requestUser(r)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
		return
	}

	email := r.URL.Query().Get("email")
	platform := types.Platform(r.URL.Query().Get("platform"))
	if email == "" || !platform.IsValid() {
		errutil.HandleHTTP(r.Context(), w, goerr.New("email and platform query parameters are required"), http.StatusBadRequest)
		return
	}

	mapping, err := s.uc.ResolveIdentity(r.Context(), userID, orgID, email, platform)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
		return
	}
	if mapping == nil {
		respondJSON(w, http.StatusOK, map[string]any{"resolved": false})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"resolved": true,
		"mapping":  toMappingResponse(mapping),
	})
}
