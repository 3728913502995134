package handler

import (
	"net/http"
	"strconv"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// VentasPorDia godoc
// @Summary Ventas agregadas por día
// @Description Solo cuentan las ventas en estado completada.
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde query string true "Fecha inicial YYYY-MM-DD"
// @Param hasta query string true "Fecha final YYYY-MM-DD"
// @Success 200 {array} dto.VentasPorDiaResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/reportes/ventas-por-dia [get]
func (h *ReportesHandler) VentasPorDia(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	resp, err := h.svc.VentasPorDia(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// TopProductos godoc
// @Summary Productos más vendidos del período
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Param desde query string true "Fecha inicial YYYY-MM-DD"
// @Param hasta query string true "Fecha final YYYY-MM-DD"
// @Param limit query int false "Máximo de filas (default 10, max 100)"
// @Success 200 {array} dto.TopProductoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/reportes/top-productos [get]
func (h *ReportesHandler) TopProductos(c *gin.Context) {
	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	resp, err := h.svc.TopProductos(c.Request.Context(), filter, limit)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen godoc
// @Summary Resumen del día para el dashboard
// @Tags reportes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ResumenDashboardResponse
// @Router /v1/reportes/resumen [get]
func (h *ReportesHandler) Resumen(c *gin.Context) {
	resp, err := h.svc.ResumenDashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al generar el resumen"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) bindFilter(c *gin.Context) (dto.ReporteFilter, bool) {
	var filter dto.ReporteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return filter, false
	}
	if err := validate.Struct(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("rango de fechas invalido (YYYY-MM-DD)"))
		return filter, false
	}
	return filter, true
}
