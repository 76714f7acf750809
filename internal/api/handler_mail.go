package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"contactrelay/internal/model"
	"contactrelay/internal/service/relay"
	"contactrelay/pkg/logger"
	"contactrelay/pkg/metrics"
)

const (
	msgSent      = "Message sent successfully!"
	msgFailed    = "Failed to send email."
	msgDuplicate = "Message already received."
	msgBadBody   = "Invalid request body."
	msgInvalid   = "Invalid submission."
)

// ContactRelay is implemented by relay.Service.
type ContactRelay interface {
	Relay(ctx context.Context, sub model.ContactSubmission) (relay.Outcome, error)
}

type MailHandler struct {
	relay  ContactRelay
	strict bool
	logger *zap.Logger
}

func NewMailHandler(r ContactRelay, strict bool, logger *zap.Logger) *MailHandler {
	return &MailHandler{
		relay:  r,
		strict: strict,
		logger: logger,
	}
}

// SendEmail handles POST /send-email/
func (h *MailHandler) SendEmail(c *gin.Context) {
	log := logger.WithTrace(c.Request.Context(), h.logger)

	var (
		sub       model.ContactSubmission
		fieldErrs map[string]string
		err       error
	)
	if h.strict {
		sub, fieldErrs, err = bindStrict(c)
	} else {
		sub, err = bindLenient(c)
	}
	if err != nil {
		metrics.IncrementContactSubmission("invalid")
		log.Warn("Undecodable contact submission", zap.Error(err))
		c.JSON(http.StatusBadRequest, model.RelayResponse{Success: false, Message: msgBadBody})
		return
	}
	if len(fieldErrs) > 0 {
		metrics.IncrementContactSubmission("invalid")
		c.JSON(http.StatusBadRequest, model.RelayResponse{Success: false, Message: msgInvalid, Errors: fieldErrs})
		return
	}

	outcome, err := h.relay.Relay(c.Request.Context(), sub)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.RelayResponse{Success: false, Message: msgFailed})
		return
	}

	if outcome == relay.OutcomeDuplicate {
		c.JSON(http.StatusOK, model.RelayResponse{Success: true, Message: msgDuplicate})
		return
	}
	c.JSON(http.StatusOK, model.RelayResponse{Success: true, Message: msgSent})
}

// bindLenient decodes form or JSON bodies without type or presence checks.
// An empty body yields an empty submission; only a syntactically broken body
// is an error.
func bindLenient(c *gin.Context) (model.ContactSubmission, error) {
	if c.ContentType() == binding.MIMEJSON {
		var loose model.LooseContactSubmission
		if err := c.ShouldBindJSON(&loose); err != nil && !errors.Is(err, io.EOF) {
			return model.ContactSubmission{}, err
		}
		return loose.Submission(), nil
	}

	var sub model.ContactSubmission
	if err := c.ShouldBind(&sub); err != nil && !errors.Is(err, io.EOF) {
		return sub, err
	}
	return sub, nil
}

// bindStrict decodes and validates. Validation failures are returned per
// field; decode failures as err.
func bindStrict(c *gin.Context) (model.ContactSubmission, map[string]string, error) {
	var req model.StrictContactSubmission
	err := c.ShouldBind(&req)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(&req)
	}

	var verrs validator.ValidationErrors
	switch {
	case err == nil:
		return req.Submission(), nil, nil
	case errors.As(err, &verrs):
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = fe.Tag()
		}
		return model.ContactSubmission{}, fields, nil
	default:
		return model.ContactSubmission{}, nil, err
	}
}
