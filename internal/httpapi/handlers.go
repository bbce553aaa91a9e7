package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"callboard/internal/appointments"
	"callboard/internal/audit"
	"callboard/internal/auth"
	"callboard/internal/calls"
	"callboard/internal/contacts"
	"callboard/internal/detail"
	"callboard/internal/lifecycle"
	"callboard/internal/listview"
	"callboard/internal/reporting"
	"callboard/internal/store"
	"callboard/internal/timewindow"
	"callboard/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal modules, return JSON.
type Handlers struct {
	Calls        *listview.Controller[calls.Call]
	Contacts     *listview.Controller[contacts.Contact]
	Appointments *listview.Controller[appointments.Appointment]

	ContactFilter *ContactFilter

	Lifecycle *lifecycle.Service
	Detail    *detail.Aggregator
	Store     store.Store

	// Summary and Audit are optional; their routes are skipped when nil.
	Summary *reporting.Service
	Audit   *audit.Service

	// Expansion is the customer history expand/collapse view state.
	Expansion *detail.Expansion
}

// Register wires the board's routes onto a router group. Auth is the
// caller's concern; mutationMW (rate limiting) is applied to writes only so
// list polling is never throttled.
func (h Handlers) Register(r gin.IRouter, mutationMW ...gin.HandlerFunc) {
	r.GET("/calls", h.ListCalls)
	r.POST("/calls/:id/followup", chain(mutationMW, h.SetCallFollowup)...)

	r.GET("/contacts", h.ListContacts)
	r.GET("/contacts/:id", h.ContactDetail)
	r.POST("/contacts/:id/status", chain(mutationMW, h.SetContactStatus)...)
	r.POST("/contacts/:id/notes", chain(mutationMW, h.UpdateContactNotes)...)

	r.GET("/appointments", h.ListAppointments)
	r.POST("/appointments/:id/complete", chain(mutationMW, h.CompleteAppointment)...)

	r.GET("/customers", h.ListCustomers)
	r.GET("/customers/:id", h.CustomerDetail)

	if h.Expansion != nil {
		// Pure view state: none of these touch the record store.
		r.POST("/history/:id/toggle", h.ToggleHistoryItem)
		r.POST("/history/expand-all", h.ExpandHistory)
		r.POST("/history/collapse-all", h.CollapseHistory)
	}

	if h.Summary != nil {
		r.GET("/summary", h.BoardSummary)
	}
	if h.Audit != nil {
		r.GET("/activity", h.RecentActivity)
	}
}

func chain(mw []gin.HandlerFunc, final gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, final)
}

// ContactFilter is the engagement-status filter state of the contacts view.
// Empty means no filter ("all").
type ContactFilter struct {
	mu     sync.Mutex
	status contacts.EngagementStatus
}

// NewContactFilter starts on the triage default, like the board's contacts
// page: show what needs attention first.
func NewContactFilter() *ContactFilter {
	return &ContactFilter{status: contacts.StatusNeedsAttention}
}

func (f *ContactFilter) Set(s contacts.EngagementStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *ContactFilter) Get() contacts.EngagementStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// --- Lists ---

func (h Handlers) ListCalls(c *gin.Context) {
	if !applySelection(c, h.Calls) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      h.Calls.Items(),
		"timeframe":  h.Calls.Timeframe(),
		"refreshing": h.Calls.Refreshing(),
	})
}

func (h Handlers) ListAppointments(c *gin.Context) {
	if !applySelection(c, h.Appointments) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      h.Appointments.Items(),
		"timeframe":  h.Appointments.Timeframe(),
		"refreshing": h.Appointments.Refreshing(),
	})
}

func (h Handlers) ListContacts(c *gin.Context) {
	if raw, ok := c.GetQuery("status"); ok {
		if raw == "all" {
			h.ContactFilter.Set("")
		} else {
			s := contacts.EngagementStatus(raw)
			if !s.Valid() {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown engagement status"})
				return
			}
			h.ContactFilter.Set(s)
		}
	}
	if !applySelection(c, h.Contacts) {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":      h.Contacts.Items(),
		"timeframe":  h.Contacts.Timeframe(),
		"status":     h.ContactFilter.Get(),
		"refreshing": h.Contacts.Refreshing(),
	})
}

func (h Handlers) ListCustomers(c *gin.Context) {
	out, err := h.Store.ListCustomers(c.Request.Context())
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": out})
}

// --- Mutations ---

type statusRequest struct {
	Status string `json:"status"`
}

func (h Handlers) SetCallFollowup(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	err := h.Lifecycle.SetCallFollowup(c.Request.Context(), c.Param("id"), calls.FollowupStatus(req.Status))
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	h.recordActivity(c, audit.EventTypeCallFollowup, c.Param("id"), "followup set to "+req.Status)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h Handlers) SetContactStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	err := h.Lifecycle.SetContactStatus(c.Request.Context(), c.Param("id"), contacts.EngagementStatus(req.Status))
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	h.recordActivity(c, audit.EventTypeContactStatus, c.Param("id"), "engagement set to "+req.Status)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type notesRequest struct {
	Notes string `json:"notes"`
}

func (h Handlers) UpdateContactNotes(c *gin.Context) {
	var req notesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if err := h.Lifecycle.UpdateContactNotes(c.Request.Context(), c.Param("id"), req.Notes); err != nil {
		respondStoreErr(c, err)
		return
	}
	h.recordActivity(c, audit.EventTypeContactNotes, c.Param("id"), "notes updated")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CompleteAppointment is a no-op from the caller's perspective when the
// appointment is not Booked: the refusal is logged server-side and the
// response reports the status unchanged.
func (h Handlers) CompleteAppointment(c *gin.Context) {
	err := h.Lifecycle.CompleteAppointment(c.Request.Context(), c.Param("id"))
	if errors.Is(err, lifecycle.ErrInvalidTransition) {
		logger.FromGin(c).Warn("appointment completion refused", "appointment_id", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{"status": "unchanged"})
		return
	}
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	h.recordActivity(c, audit.EventTypeAppointmentClosed, c.Param("id"), "appointment completed")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- Reporting ---

func (h Handlers) BoardSummary(c *gin.Context) {
	sel, ok := parseSelector(c)
	if !ok {
		return
	}
	out, err := h.Summary.Summarize(c.Request.Context(), sel)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) RecentActivity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	events, err := h.Audit.Recent(c.Request.Context(), limit)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": events})
}

// --- Details ---

func (h Handlers) ContactDetail(c *gin.Context) {
	d, err := h.Detail.ContactDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	resp := gin.H{"contact": d.Contact, "calls": d.Calls}
	if latest, ok := d.LatestCall(); ok {
		resp["latest_call"] = latest
	}
	if h.Expansion != nil {
		ids := make([]string, len(d.Calls))
		for i, call := range d.Calls {
			ids[i] = call.ID
		}
		resp["expanded"] = h.expandedOf(ids)
	}
	c.JSON(http.StatusOK, resp)
}

func (h Handlers) CustomerDetail(c *gin.Context) {
	d, err := h.Detail.CustomerDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	resp := gin.H{"customer": d.Customer, "appointments": d.Appointments}
	if latest, ok := d.LatestAppointment(); ok {
		resp["latest_appointment"] = latest
	}
	if h.Expansion != nil {
		ids := make([]string, len(d.Appointments))
		for i, a := range d.Appointments {
			ids[i] = a.ID
		}
		resp["expanded"] = h.expandedOf(ids)
	}
	c.JSON(http.StatusOK, resp)
}

// expandedOf filters a history's ids down to the currently expanded ones.
func (h Handlers) expandedOf(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if h.Expansion.Expanded(id) {
			out = append(out, id)
		}
	}
	return out
}

// --- History view state ---

func (h Handlers) ToggleHistoryItem(c *gin.Context) {
	h.Expansion.Toggle(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"expanded": h.Expansion.Expanded(c.Param("id"))})
}

type expandRequest struct {
	IDs []string `json:"ids"`
}

// ExpandHistory replaces the expansion set with the given ids. The ids come
// from the detail payload the caller already holds; expanding fetches
// nothing.
func (h Handlers) ExpandHistory(c *gin.Context) {
	var req expandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	h.Expansion.ExpandAll(req.IDs)
	c.JSON(http.StatusOK, gin.H{"expanded_count": h.Expansion.Count()})
}

func (h Handlers) CollapseHistory(c *gin.Context) {
	h.Expansion.CollapseAll()
	c.JSON(http.StatusOK, gin.H{"expanded_count": 0})
}

// --- helpers ---

// recordActivity appends a best-effort audit event for a completed mutation.
// Failures are logged, never surfaced: the mutation already happened.
func (h Handlers) recordActivity(c *gin.Context, typ audit.EventType, recordID, message string) {
	if h.Audit == nil {
		return
	}
	uid, _ := auth.UserID(c.Request.Context())
	role, _ := auth.Role(c.Request.Context())
	if err := h.Audit.Record(c.Request.Context(), typ, uid, role, c.ClientIP(), recordID, message); err != nil {
		logger.FromGin(c).Warn("activity record failed", "type", typ, "record_id", recordID, "err", err)
	}
}

// parseSelector reads ?timeframe=&start=&end= into a selector. Returns false
// when it already wrote an error response.
func parseSelector(c *gin.Context) (timewindow.Selector, bool) {
	sel := timewindow.Selector{Timeframe: timewindow.TimeframeToday}
	if tf, ok := c.GetQuery("timeframe"); ok {
		sel.Timeframe = timewindow.Timeframe(tf)
	}
	if sel.Timeframe != timewindow.TimeframeCustom {
		return sel, true
	}

	var err error
	if raw, ok := c.GetQuery("start"); ok {
		if sel.Start, err = timewindow.ParseDate(raw); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return sel, false
		}
	}
	if raw, ok := c.GetQuery("end"); ok {
		if sel.End, err = timewindow.ParseDate(raw); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return sel, false
		}
	}
	return sel, true
}

// applySelection applies ?timeframe=&start=&end=&refresh= to a controller and
// runs the query. Returns false when it already wrote an error response.
func applySelection[T any](c *gin.Context, ctrl *listview.Controller[T]) bool {
	ctx := c.Request.Context()

	tf, hasTF := c.GetQuery("timeframe")
	var err error
	switch {
	case hasTF && timewindow.Timeframe(tf) == timewindow.TimeframeCustom:
		var start, end timewindow.Date
		if raw, ok := c.GetQuery("start"); ok {
			if start, err = timewindow.ParseDate(raw); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return false
			}
		}
		if raw, ok := c.GetQuery("end"); ok {
			if end, err = timewindow.ParseDate(raw); err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return false
			}
		}
		ctrl.SetCustomDraft(start, end)
		err = ctrl.ConfirmCustom(ctx)
	case hasTF:
		err = ctrl.SetTimeframe(ctx, timewindow.Timeframe(tf))
	case c.Query("refresh") != "":
		err = ctrl.Refresh(ctx)
	default:
		err = ctrl.Load(ctx)
	}

	if err != nil {
		respondStoreErr(c, err)
		return false
	}
	return true
}

// respondStoreErr maps the error taxonomy onto HTTP statuses. Anything that
// is not a local refusal is treated as a retryable backend failure.
func respondStoreErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timewindow.ErrInvalidRange),
		errors.Is(err, lifecycle.ErrInvalidStatus):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "record store unavailable", "retryable": true})
	}
}
