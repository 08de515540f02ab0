package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/ledgerbook/internal/core/domain"
	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
	"github.com/SscSPs/ledgerbook/internal/dto"
	"github.com/SscSPs/ledgerbook/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests for journal entries and their posting.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(js portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: js,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.createJournal)
		journals.GET("", h.listJournals)
		journals.GET("/:journalID", h.getJournal)
		journals.PUT("/:journalID", h.updateJournal)
		journals.DELETE("/:journalID", h.deleteJournal)
		journals.POST("/:journalID/post", h.postJournal)
		journals.POST("/:journalID/reverse", h.reverseJournal)
	}
}

// createJournal godoc
// @Summary Create a draft journal entry
// @Description Validates the lines and stores a draft with the next journal number
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.CreateJournalRequest true "Journal entry"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} ErrorResponse "Malformed lines or inactive account"
// @Failure 404 {object} ErrorResponse "Unknown account"
// @Failure 422 {object} ErrorResponse "Debits and credits do not balance"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) createJournal(c *gin.Context) {
	var req dto.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	journal, err := h.journalService.CreateJournal(c.Request.Context(), req, actor)
	if err != nil {
		respondError(c, err, "create journal")
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

// listJournals godoc
// @Summary List journal entries
// @Description Lists journal entries newest first with cursor pagination
// @Tags journals
// @Produce  json
// @Param   status query string false "draft, posted or reversed"
// @Param   q query string false "Search journal number or narration"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 400 {object} ErrorResponse "Invalid query parameters"
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	from, err := dto.ParseOptionalDate(params.From)
	if err != nil {
		respondBindError(c, err)
		return
	}
	to, err := dto.ParseOptionalDate(params.To)
	if err != nil {
		respondBindError(c, err)
		return
	}
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	filter := domain.JournalFilter{
		Status:    domain.JournalStatus(params.Status),
		Search:    params.Search,
		DateFrom:  from,
		DateTo:    to,
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
	journals, nextToken, err := h.journalService.ListJournals(c.Request.Context(), filter, actor)
	if err != nil {
		respondError(c, err, "list journals")
		return
	}
	c.JSON(http.StatusOK, dto.ToListJournalsResponse(journals, nextToken))
}

// getJournal godoc
// @Summary Get a journal entry
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Security BearerAuth
// @Router /journals/{journalID} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	journal, err := h.journalService.GetJournal(c.Request.Context(), c.Param("journalID"), actor)
	if err != nil {
		respondError(c, err, "retrieve journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// updateJournal godoc
// @Summary Replace a draft journal entry
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Param   journal body dto.UpdateJournalRequest true "Journal entry"
// @Success 200 {object} dto.JournalResponse
// @Failure 400 {object} ErrorResponse "Malformed lines"
// @Failure 404 {object} ErrorResponse "Journal or account not found"
// @Failure 409 {object} ErrorResponse "Journal is not a draft"
// @Failure 422 {object} ErrorResponse "Debits and credits do not balance"
// @Security BearerAuth
// @Router /journals/{journalID} [put]
func (h *journalHandler) updateJournal(c *gin.Context) {
	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	journal, err := h.journalService.UpdateJournal(c.Request.Context(), c.Param("journalID"), req, actor)
	if err != nil {
		respondError(c, err, "update journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// deleteJournal godoc
// @Summary Delete a draft journal entry
// @Tags journals
// @Param   journalID path string true "Journal ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Failure 409 {object} ErrorResponse "Journal is not a draft"
// @Security BearerAuth
// @Router /journals/{journalID} [delete]
func (h *journalHandler) deleteJournal(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	journalID := c.Param("journalID")

	if err := h.journalService.DeleteJournal(c.Request.Context(), journalID, actor); err != nil {
		respondError(c, err, "delete journal")
		return
	}
	c.Status(http.StatusNoContent)
}

// postJournal godoc
// @Summary Post a draft journal entry
// @Description Applies the entry to account balances, all or nothing
// @Tags journals
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 404 {object} ErrorResponse "Journal or line account not found"
// @Failure 409 {object} ErrorResponse "Journal is not a draft"
// @Failure 422 {object} ErrorResponse "Debits and credits do not balance"
// @Security BearerAuth
// @Router /journals/{journalID}/post [post]
func (h *journalHandler) postJournal(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	journalID := c.Param("journalID")

	journal, err := h.journalService.PostJournal(c.Request.Context(), journalID, actor)
	if err != nil {
		respondError(c, err, "post journal")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Journal posted", slog.String("journal_number", journal.JournalNumber))
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// reverseJournal godoc
// @Summary Reverse a posted journal entry
// @Description Creates and posts a mirrored entry and marks the original reversed
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journalID path string true "Journal ID"
// @Param   reversal body dto.ReverseJournalRequest false "Reversal overrides"
// @Success 201 {object} dto.JournalResponse
// @Failure 404 {object} ErrorResponse "Journal not found"
// @Failure 409 {object} ErrorResponse "Journal is not posted or is itself a reversal"
// @Security BearerAuth
// @Router /journals/{journalID}/reverse [post]
func (h *journalHandler) reverseJournal(c *gin.Context) {
	var req dto.ReverseJournalRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	reversal, err := h.journalService.ReverseJournal(c.Request.Context(), c.Param("journalID"), req, actor)
	if err != nil {
		respondError(c, err, "reverse journal")
		return
	}
	c.JSON(http.StatusCreated, dto.ToJournalResponse(reversal))
}
