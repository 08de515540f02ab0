package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/ledgerbook/internal/core/ports/services"
	"github.com/SscSPs/ledgerbook/internal/dto"
	"github.com/gin-gonic/gin"
)

type ledgerHandler struct {
	reportingService portssvc.ReportingService
}

func newLedgerHandler(rs portssvc.ReportingService) *ledgerHandler {
	return &ledgerHandler{reportingService: rs}
}

// getAccountLedger godoc
// @Summary Get an account ledger
// @Description Lists the postings touching an account with a running balance
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.LedgerResponse
// @Failure 400 {object} ErrorResponse "Invalid date range"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{accountID}/ledger [get]
func (h *ledgerHandler) getAccountLedger(c *gin.Context) {
	var params dto.LedgerParams
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

	report, err := h.reportingService.GetAccountLedger(c.Request.Context(), c.Param("accountID"), from, to, actor)
	if err != nil {
		respondError(c, err, "generate account ledger")
		return
	}
	c.JSON(http.StatusOK, dto.ToLedgerResponse(report))
}
