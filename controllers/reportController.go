package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pos-api/services"
)

type ReportController struct {
	reports *services.ReportService
}

func NewReportController(reports *services.ReportService) *ReportController {
	return &ReportController{reports: reports}
}

func (rc *ReportController) GetReport(c *gin.Context) {
	report, err := rc.reports.Generate(c.Request.Context(), services.ReportQuery{
		Window: c.DefaultQuery("window", services.WindowToday),
		Months: queryInt(c, "months", 1),
		Top:    queryInt(c, "top", 5),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
