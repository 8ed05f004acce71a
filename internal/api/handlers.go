package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/splitr-app/splitr/internal/auth"
	"github.com/splitr-app/splitr/internal/models"
	"github.com/splitr-app/splitr/internal/service"
	"github.com/splitr-app/splitr/internal/storage"
)

// splitSumTolerance is the largest allowed gap between an expense amount
// and the sum of its splits. Covers rounding of equal splits over odd
// amounts, nothing more.
const splitSumTolerance = 0.01

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "email and name are required")
		return
	}

	user, err := s.authn.Register(r.Context(), req.Email, req.Name, req.Password)
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authn.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := s.resolver.CurrentUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	subject := s.resolver.CurrentUser(r.Context())
	writeJSON(w, http.StatusOK, s.balances.GetBalances(r.Context(), subject))
}

func (s *Server) handleGroupBalances(w http.ResponseWriter, r *http.Request) {
	subject := s.resolver.CurrentUser(r.Context())
	writeJSON(w, http.StatusOK, s.groups.GetGroupBalances(r.Context(), subject))
}

func (s *Server) handleGroupLedger(w http.ResponseWriter, r *http.Request) {
	subject := s.resolver.CurrentUser(r.Context())
	groupID := chi.URLParam(r, "groupID")

	ledger, err := s.groups.GetGroupLedger(r.Context(), subject, groupID)
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, "not a member of this group")
		return
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "group not found")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "failed to load group")
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

func (s *Server) handleTotalSpent(w http.ResponseWriter, r *http.Request) {
	subject := s.resolver.CurrentUser(r.Context())
	year := yearParam(r)
	total := s.stats.TotalSpent(r.Context(), subject, year)
	writeJSON(w, http.StatusOK, map[string]any{
		"year":       year,
		"totalSpent": total,
	})
}

func (s *Server) handleMonthlySpending(w http.ResponseWriter, r *http.Request) {
	subject := s.resolver.CurrentUser(r.Context())
	year := yearParam(r)
	months := s.stats.MonthlySpending(r.Context(), subject, year)
	writeJSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"months": months,
	})
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	subject := s.resolver.CurrentUser(r.Context())
	writeJSON(w, http.StatusOK, s.contacts.GetContacts(r.Context(), subject))
}

func yearParam(r *http.Request) int {
	if raw := r.URL.Query().Get("year"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil && year > 0 {
			return year
		}
	}
	return time.Now().UTC().Year()
}

type createExpenseRequest struct {
	Description  string         `json:"description"`
	Amount       float64        `json:"amount"`
	Category     string         `json:"category,omitempty"`
	Date         int64          `json:"date,omitempty"`
	PaidByUserID string         `json:"paidByUserId,omitempty"`
	SplitType    string         `json:"splitType,omitempty"`
	GroupID      string         `json:"groupId,omitempty"`
	Splits       []models.Split `json:"splits"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFrom(r.Context())

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if len(req.Splits) == 0 {
		writeError(w, http.StatusBadRequest, "at least one split is required")
		return
	}
	var splitSum float64
	for _, sp := range req.Splits {
		if sp.UserID == "" {
			writeError(w, http.StatusBadRequest, "every split needs a userId")
			return
		}
		if sp.Amount < 0 {
			writeError(w, http.StatusBadRequest, "split amounts cannot be negative")
			return
		}
		splitSum += sp.Amount
	}
	if math.Abs(splitSum-req.Amount) > splitSumTolerance {
		writeError(w, http.StatusBadRequest, "splits must sum to the expense amount")
		return
	}

	if req.GroupID != "" {
		if err := s.requireMembership(w, r, req.GroupID, callerID); err != nil {
			return
		}
	}

	payer := req.PaidByUserID
	if payer == "" {
		payer = callerID
	}
	splitType := req.SplitType
	if splitType == "" {
		splitType = "equal"
	}

	expense := &models.Expense{
		Description:  req.Description,
		Amount:       req.Amount,
		Category:     req.Category,
		Date:         req.Date,
		PaidByUserID: payer,
		SplitType:    splitType,
		GroupID:      req.GroupID,
		CreatedBy:    callerID,
		Splits:       req.Splits,
	}
	if err := s.store.CreateExpense(r.Context(), expense); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create expense")
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

type createSettlementRequest struct {
	Amount            float64  `json:"amount"`
	Note              string   `json:"note,omitempty"`
	Date              int64    `json:"date,omitempty"`
	PaidByUserID      string   `json:"paidByUserId,omitempty"`
	ReceivedByUserID  string   `json:"receivedByUserId"`
	GroupID           string   `json:"groupId,omitempty"`
	RelatedExpenseIDs []string `json:"relatedExpenseIds,omitempty"`
}

func (s *Server) handleCreateSettlement(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFrom(r.Context())

	var req createSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.ReceivedByUserID == "" {
		writeError(w, http.StatusBadRequest, "receivedByUserId is required")
		return
	}

	payer := req.PaidByUserID
	if payer == "" {
		payer = callerID
	}
	if payer == req.ReceivedByUserID {
		writeError(w, http.StatusBadRequest, "payer and receiver must differ")
		return
	}

	if req.GroupID != "" {
		if err := s.requireMembership(w, r, req.GroupID, callerID); err != nil {
			return
		}
	}

	settlement := &models.Settlement{
		Amount:            req.Amount,
		Note:              req.Note,
		Date:              req.Date,
		PaidByUserID:      payer,
		ReceivedByUserID:  req.ReceivedByUserID,
		GroupID:           req.GroupID,
		RelatedExpenseIDs: req.RelatedExpenseIDs,
		CreatedBy:         callerID,
	}
	if err := s.store.CreateSettlement(r.Context(), settlement); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create settlement")
		return
	}
	writeJSON(w, http.StatusCreated, settlement)
}

type createGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	MemberIDs   []string `json:"memberIds,omitempty"`
	// InviteEmails lists members who have no account yet. They join the
	// group with an email-only reference and get linked on signup.
	InviteEmails []string `json:"inviteEmails,omitempty"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	callerID := auth.UserIDFrom(r.Context())
	callerEmail := auth.EmailFrom(r.Context())

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	now := time.Now().Unix()
	members := []models.Membership{{
		User:     models.MemberRef{UserID: callerID, Email: callerEmail},
		Role:     "admin",
		JoinedAt: now,
	}}
	for _, id := range req.MemberIDs {
		if id == callerID {
			continue
		}
		user, err := s.store.GetUser(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "unknown member id: "+id)
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to create group")
			return
		}
		members = append(members, models.Membership{
			User:     models.MemberRef{UserID: user.ID, Email: user.Email},
			Role:     "member",
			JoinedAt: now,
		})
	}
	for _, email := range req.InviteEmails {
		members = append(members, models.Membership{
			User:     models.MemberRef{Email: email},
			Role:     "member",
			JoinedAt: now,
		})
	}

	group := &models.Group{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   callerID,
		CreatedAt:   now,
		Members:     members,
	}
	if err := s.store.CreateGroup(r.Context(), group); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create group")
		return
	}
	writeJSON(w, http.StatusCreated, group)
}

// requireMembership rejects writes into groups the caller does not belong
// to. Writes the response itself; the returned error only signals the
// handler to stop.
func (s *Server) requireMembership(w http.ResponseWriter, r *http.Request, groupID, callerID string) error {
	group, err := s.store.GetGroup(r.Context(), groupID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "group not found")
		return err
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load group")
		return err
	}
	if !group.HasMember(callerID) {
		writeError(w, http.StatusForbidden, "not a member of this group")
		return service.ErrNotMember
	}
	return nil
}
