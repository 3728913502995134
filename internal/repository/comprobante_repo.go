package repository

import (
	"context"
	"time"

	"modapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ComprobanteRepository interface {
	Create(ctx context.Context, c *model.Comprobante) error
	FindByVentaID(ctx context.Context, ventaID uuid.UUID) (*model.Comprobante, error)
	MarcarGenerado(ctx context.Context, id uuid.UUID, pdfPath string, emailEnviado bool) error
	MarcarError(ctx context.Context, id uuid.UUID, motivo string, nextRetry time.Time) error
	ListPendientesRetry(ctx context.Context, limit int) ([]model.Comprobante, error)
}

type comprobanteRepo struct{ db *gorm.DB }

func NewComprobanteRepository(db *gorm.DB) ComprobanteRepository { return &comprobanteRepo{db: db} }

func (r *comprobanteRepo) Create(ctx context.Context, c *model.Comprobante) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *comprobanteRepo) FindByVentaID(ctx context.Context, ventaID uuid.UUID) (*model.Comprobante, error) {
	var c model.Comprobante
	err := r.db.WithContext(ctx).Where("venta_id = ?", ventaID).First(&c).Error
	return &c, err
}

func (r *comprobanteRepo) MarcarGenerado(ctx context.Context, id uuid.UUID, pdfPath string, emailEnviado bool) error {
	return r.db.WithContext(ctx).Model(&model.Comprobante{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado":        "generado",
			"pdf_path":      pdfPath,
			"email_enviado": emailEnviado,
			"last_error":    nil,
			"next_retry_at": nil,
		}).Error
}

func (r *comprobanteRepo) MarcarError(ctx context.Context, id uuid.UUID, motivo string, nextRetry time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Comprobante{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"estado":        "error",
			"last_error":    motivo,
			"retry_count":   gorm.Expr("retry_count + 1"),
			"next_retry_at": nextRetry,
		}).Error
}

func (r *comprobanteRepo) ListPendientesRetry(ctx context.Context, limit int) ([]model.Comprobante, error) {
	var pendientes []model.Comprobante
	err := r.db.WithContext(ctx).
		Where("estado = 'error' AND next_retry_at IS NOT NULL AND next_retry_at <= NOW()").
		Order("next_retry_at ASC").Limit(limit).Find(&pendientes).Error
	return pendientes, err
}
