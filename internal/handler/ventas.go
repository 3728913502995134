package handler

import (
	"errors"
	"net/http"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Finalizar godoc
// @Summary      Finalizar una venta
// @Description  Crea la cabecera y procesa las líneas secuencialmente. Las líneas sin stock se rechazan sin abortar las demás; el resultado indica completa, parcial o fallida. El comprobante PDF se genera de forma asíncrona.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.FinalizarVentaRequest true "Cliente, pago y líneas"
// @Success      201  {object} dto.FinalizarVentaResponse
// @Failure      400  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Finalizar(c *gin.Context) {
	var req dto.FinalizarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}

	resp, err := h.svc.FinalizarVenta(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCarritoVacio),
			errors.Is(err, service.ErrCantidadInvalida),
			errors.Is(err, service.ErrMetodoPagoInvalido):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		case errors.Is(err, service.ErrVentaNoCreada):
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Error al procesar la venta"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Detalle godoc
// @Summary      Detalle de una venta
// @Description  Retorna cabecera, líneas con producto y variante, y totales recalculados desde la base.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la venta"
// @Success      200 {object} dto.VentaResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id} [get]
func (h *VentasHandler) Detalle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerDetalle(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrVentaNoEncontrada) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error al obtener la venta"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar ventas
// @Description  Retorna lista paginada de ventas filtrada por fecha y estado.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        fecha  query string false "Fecha YYYY-MM-DD (default: hoy)"
// @Param        estado query string false "completada | pendiente | all"
// @Param        page   query int    false "Página (default 1)"
// @Param        limit  query int    false "Registros por página (default 50)"
// @Success      200    {object} dto.VentaListResponse
// @Failure      400    {object} apierror.APIError
// @Router       /v1/ventas [get]
func (h *VentasHandler) Listar(c *gin.Context) {
	var filter dto.VentaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar ventas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AgregarArticulo godoc
// @Summary      Agregar un artículo a una venta pendiente
// @Description  Valida y descuenta stock e inserta la línea en una sola transacción. Precio según el rol del vendedor.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "UUID de la venta"
// @Param        body body dto.LineaVentaRequest true "Variante y cantidad"
// @Success      200  {object} dto.VentaResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/ventas/{id}/articulos [post]
func (h *VentasHandler) AgregarArticulo(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var linea dto.LineaVentaRequest
	if !bindAndValidate(c, &linea) {
		return
	}

	if err := h.svc.AgregarArticulo(c.Request.Context(), actorFromContext(c), id, linea); err != nil {
		switch {
		case errors.Is(err, service.ErrStockInsuficiente):
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
		case errors.Is(err, service.ErrVentaNoEncontrada),
			errors.Is(err, service.ErrInventarioNoEncontrado):
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		case errors.Is(err, service.ErrVentaCerrada),
			errors.Is(err, service.ErrCantidadInvalida):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Error al agregar el articulo"))
		}
		return
	}

	resp, err := h.svc.ObtenerDetalle(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al obtener la venta"))
		return
	}
	c.JSON(http.StatusOK, resp)
}
