package handler

import (
	"context"

	"coins-wallet/internal/adapter/http/dto"
	"coins-wallet/internal/adapter/http/middleware"
	"coins-wallet/internal/core/domain"
	"coins-wallet/internal/core/ports"
	"coins-wallet/pkg/apperror"
	"coins-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles transfer endpoints.
type PaymentHandler struct {
	transferSvc ports.TransferService
	accountSvc  ports.AccountService
	currency    string
	limits      PageLimits
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(transferSvc ports.TransferService, accountSvc ports.AccountService, currency string, limits PageLimits) *PaymentHandler {
	return &PaymentHandler{
		transferSvc: transferSvc,
		accountSvc:  accountSvc,
		currency:    currency,
		limits:      limits,
	}
}

// ListPayments handles GET /api/v1/payments: the caller's wallet history.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	q, err := dto.ParsePageQuery(c.Query("page"), c.Query("per_page"), h.limits.Default, h.limits.Max)
	if err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.accountSvc.GetWalletByOwner(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	rows, meta, err := h.transferSvc.GetHistory(c.Request.Context(), wallet.ID, q.Page, q.PerPage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Page(c, "transactions list", dto.NewTransferRecords(rows), meta)
}

// Transfer handles POST /api/v1/payments.
func (h *PaymentHandler) Transfer(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	if !dto.ValidAmount(*req.Amount) {
		response.Error(c, apperror.ErrInvalidRequest("Invalid requested amount"))
		return
	}

	ctx := c.Request.Context()
	from, err := h.resolveWallet(ctx, req.FromAccount, "Invalid provided account to be debited")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := h.resolveWallet(ctx, req.ToAccount, "Invalid provided account to be credited")
	if err != nil {
		response.Error(c, err)
		return
	}
	transfer, err := h.transferSvc.Transfer(ctx, domain.TransferRequest{
		ActorID: userID,
		From:    from,
		To:      to,
		Amount:  *req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Set(middleware.CtxAuditResourceID, transfer.ID.String())

	response.OK(c, "Payment successful", dto.NewTransferResponse(transfer, h.currency))
}

// resolveWallet turns a wallet reference into the stored wallet. Malformed
// and unknown references both yield a validation error carrying invalidMsg.
func (h *PaymentHandler) resolveWallet(ctx context.Context, ref, invalidMsg string) (*domain.Wallet, error) {
	id, err := uuid.Parse(ref)
	if err != nil {
		return nil, apperror.Validation(invalidMsg)
	}
	wallet, err := h.accountSvc.GetWallet(ctx, id)
	if apperror.HasCode(err, apperror.CodeNotFound) {
		return nil, apperror.Validation(invalidMsg)
	}
	if err != nil {
		return nil, err
	}
	return wallet, nil
}
