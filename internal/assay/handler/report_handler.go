package handler

import (
	"github.com/bitfantasy/goldassay/internal/assay/service"
	"github.com/gin-gonic/gin"
)

// ReportHandler 报表处理器
type ReportHandler struct {
	svc *service.ReportService
}

func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func bindReportQuery(c *gin.Context) (service.ReportQuery, bool) {
	var q service.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		BadRequest(c, "invalid query: "+err.Error())
		return q, false
	}
	q.Page, q.PageSize = GetPagination(c)
	return q, true
}

// ListForms GET /reports/forms
func (h *ReportHandler) ListForms(c *gin.Context) {
	q, ok := bindReportQuery(c)
	if !ok {
		return
	}
	rows, total, err := h.svc.ListForms(c.Request.Context(), GetUserID(c), q)
	if err != nil {
		InternalError(c, "load report: "+err.Error())
		return
	}
	Success(c, ListResponse{
		Items:      rows,
		Pagination: NewPagination(q.Page, q.PageSize, total),
	})
}

// ExportForms GET /reports/forms/export
func (h *ReportHandler) ExportForms(c *gin.Context) {
	q, ok := bindReportQuery(c)
	if !ok {
		return
	}
	f, filename, err := h.svc.ExportForms(c.Request.Context(), GetUserID(c), q)
	if err != nil {
		InternalError(c, "export report: "+err.Error())
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
