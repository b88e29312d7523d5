package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/paresh-enterprises/backend/api/transport"
	"github.com/paresh-enterprises/backend/domain"
	"github.com/paresh-enterprises/backend/pkg/httpcontext"
	contactUC "github.com/paresh-enterprises/backend/usecase/contact"
)

type ContactHandler struct {
	baseHandler
	uc *contactUC.UseCase
}

func NewContactHandler(uc *contactUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Submit the contact form
// @Tags contact
// @Router /api/contact [post]
func (h *ContactHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req transport.ContactRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondError(ctx, domain.ErrInvalidPayload)
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	_, err := h.uc.Submit(stdCtx, &domain.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Phone:   req.Phone,
		Company: req.Company,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondJSON(ctx, http.StatusOK, transport.MessageResponse{
		Message: "Contact form submitted successfully!",
		Success: true,
	})
}
