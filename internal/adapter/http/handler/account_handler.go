package handler

import (
	"coins-wallet/internal/adapter/http/dto"
	"coins-wallet/internal/core/ports"
	"coins-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// PageLimits bounds the page size accepted by listing endpoints.
type PageLimits struct {
	Default int
	Max     int
}

// AccountHandler lists wallets.
type AccountHandler struct {
	accountSvc ports.AccountService
	limits     PageLimits
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService, limits PageLimits) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc, limits: limits}
}

// ListAccounts handles GET /api/v1/accounts.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	q, err := dto.ParsePageQuery(c.Query("page"), c.Query("per_page"), h.limits.Default, h.limits.Max)
	if err != nil {
		response.Error(c, err)
		return
	}

	rows, meta, err := h.accountSvc.ListAccounts(c.Request.Context(), q.Page, q.PerPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Page(c, "Account list retrieved", dto.NewAccountRecords(rows), meta)
}
