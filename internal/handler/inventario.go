package handler

import (
	"errors"
	"net/http"
	"strconv"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/middleware"
	"modapos/internal/model"
	"modapos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// Crear godoc
// @Summary Crear variante de inventario
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CrearInventarioRequest true "Datos de la variante"
// @Success 201 {object} dto.InventarioResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/inventario [post]
func (h *InventarioHandler) Crear(c *gin.Context) {
	var req dto.CrearInventarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Obtener godoc
// @Summary Obtener variante por ID
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la variante"
// @Success 200 {object} dto.InventarioResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/inventario/{id} [get]
func (h *InventarioHandler) Obtener(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Obtener(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Variante no encontrada"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListarPorProducto godoc
// @Summary Listar variantes de un producto
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Param producto_id path string true "UUID del producto"
// @Param en_stock query bool false "Solo variantes con stock > 0"
// @Success 200 {array} dto.InventarioResponse
// @Router /v1/inventario/producto/{producto_id} [get]
func (h *InventarioHandler) ListarPorProducto(c *gin.Context) {
	productoID, ok := pathID(c, "producto_id")
	if !ok {
		return
	}
	soloEnStock := c.Query("en_stock") == "true"
	resp, err := h.svc.ListarPorProducto(c.Request.Context(), productoID, soloEnStock)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar variantes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary Actualizar variante
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la variante"
// @Param body body dto.ActualizarInventarioRequest true "Campos a actualizar"
// @Success 200 {object} dto.InventarioResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/inventario/{id} [put]
func (h *InventarioHandler) Actualizar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarInventarioRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Desactivar godoc
// @Summary Desactivar variante
// @Tags inventario
// @Security BearerAuth
// @Param id path string true "UUID de la variante"
// @Success 204
// @Router /v1/inventario/{id} [delete]
func (h *InventarioHandler) Desactivar(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// AjustarStock godoc
// @Summary Ajuste manual de stock
// @Description Suma o resta unidades a una variante registrando el movimiento con su motivo. El stock nunca queda negativo.
// @Tags inventario
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la variante"
// @Param body body dto.AjustarStockRequest true "Delta y motivo"
// @Success 200 {object} dto.InventarioResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/inventario/{id}/ajustar [post]
func (h *InventarioHandler) AjustarStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AjustarStockRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AjustarStock(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		if errors.Is(err, service.ErrStockInsuficiente) {
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Alertas godoc
// @Summary Variantes con stock bajo
// @Description Lista las variantes activas cuyo stock actual está en o debajo de su mínimo.
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Success 200 {array} dto.AlertaStockResponse
// @Router /v1/inventario/alertas [get]
func (h *InventarioHandler) Alertas(c *gin.Context) {
	resp, err := h.svc.ObtenerAlertas(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al obtener alertas"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Movimientos godoc
// @Summary Historial de movimientos de una variante
// @Tags inventario
// @Produce json
// @Security BearerAuth
// @Param id path string true "UUID de la variante"
// @Param limit query int false "Máximo de registros (default 50)"
// @Success 200 {array} dto.MovimientoStockResponse
// @Router /v1/inventario/{id}/movimientos [get]
func (h *InventarioHandler) Movimientos(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar movimientos"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// actorFromContext builds the acting user from the verified JWT claims.
func actorFromContext(c *gin.Context) model.Actor {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.UserID)
	return model.Actor{ID: id, Username: claims.Username, Rol: claims.Rol}
}
