package reports

import (
	"time"

	"github.com/gin-gonic/gin"

	apphttp "resale_support_backend/internal/http"
	"resale_support_backend/platform/apperr"
	"resale_support_backend/platform/httpkit"
	"resale_support_backend/platform/logger"
	"resale_support_backend/platform/validator"
)

// Module exposes the report triggers over HTTP.
type Module struct {
	svc      *Service
	validate *validator.Validator
	log      *logger.Logger
}

// NewModule creates the reports module.
func NewModule(svc *Service, log *logger.Logger) *Module {
	return &Module{
		svc:      svc,
		validate: validator.New(),
		log:      log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reports"
}

// RegisterRoutes mounts the report trigger endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	report := ctx.API.Group("/report")
	report.POST("/weekly", m.handleTrigger(TypeWeekly))
	report.POST("/monthly", m.handleTrigger(TypeMonthly))
}

// triggerRequest is the optional body of a report trigger. TargetDate
// rebuilds the period that date falls after, instead of the current one.
type triggerRequest struct {
	TargetDate string `json:"targetDate" validate:"omitempty,datetime=2006-01-02"`
}

// handleTrigger builds and distributes a report on demand.
// POST /api/report/weekly
// POST /api/report/monthly
func (m *Module) handleTrigger(typ Type) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req triggerRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				httpkit.HandleError(c, apperr.BadRequest("invalid request body").WithDetails(err.Error()))
				return
			}
			if err := m.validate.Struct(req); err != nil {
				httpkit.HandleError(c, apperr.Validation("validation failed").WithDetails(err.Error()))
				return
			}
		}

		at := time.Now()
		if req.TargetDate != "" {
			parsed, err := time.ParseInLocation("2006-01-02", req.TargetDate, time.Local)
			if err != nil {
				httpkit.HandleError(c, apperr.Validation("invalid targetDate").WithDetails(err.Error()))
				return
			}
			at = parsed
		}

		report, err := m.svc.RunAt(c.Request.Context(), typ, at)
		if err != nil {
			m.log.Error("report trigger failed", "type", string(typ), "error", err.Error())
			httpkit.HandleError(c, apperr.Internal("report generation failed"))
			return
		}

		httpkit.OK(c, report)
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
