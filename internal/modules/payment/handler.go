package payment

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"globobook/internal/modules/notification"
)

type Handler struct {
	verifier   eventVerifier
	service    *Service
	dispatcher *notification.Dispatcher
	loggerf    func(format string, args ...interface{})
}

func NewHandler(verifier eventVerifier, service *Service, dispatcher *notification.Dispatcher, loggerf func(format string, args ...interface{})) *Handler {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Handler{verifier: verifier, service: service, dispatcher: dispatcher, loggerf: loggerf}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/webhook", h.Webhook)
}

// Webhook godoc
// @Summary      Payment provider webhook
// @Description  Verifies the event signature, reconciles the booking and acknowledges receipt
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        Signature header string true "t=<unix>,v1=<hmac-sha256 hex>"
// @Success      200 {object} WebhookResponse
// @Failure      400 {string} string "bad signature or payload"
// @Router       /payments/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	ev, err := h.verifier.VerifyAndParseEvent(rawBody, c.GetHeader("Signature"), time.Now())
	if err != nil {
		h.loggerf("level=error msg=webhook rejected err=%v", err)
		if errors.Is(err, ErrInvalidSignature) {
			c.String(http.StatusBadRequest, "invalid signature")
			return
		}
		c.String(http.StatusBadRequest, "malformed event")
		return
	}
	h.loggerf("level=info msg=webhook received event_id=%s type=%s session=%s", ev.ID, ev.Type, ev.Data.SessionID)

	res, err := h.service.Reconcile(c.Request.Context(), ev)
	if err != nil {
		// Storage failure: let the provider retry this delivery.
		h.loggerf("level=error msg=reconciliation failed event_id=%s err=%v", ev.ID, err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	// NOT_FOUND and ALREADY_PROCESSED still acknowledge receipt:
	// anything but a 2xx here causes a provider retry storm.
	if h.dispatcher != nil {
		h.dispatcher.Dispatch(c.Request.Context(), res.Notifications)
	}
	c.JSON(http.StatusOK, WebhookResponse{Received: true, Outcome: string(res.Outcome)})
}
