package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"modapos/internal/infra"
	"modapos/internal/metrics"
	"modapos/internal/repository"
)

const (
	maxComprobanteAttempts = 3
	retryBackoff           = 2 * time.Minute
)

// ComprobanteWorker generates the PDF voucher of a finished sale and
// optionally emails it. Failures are retried with a bounded count and
// then parked in the dead letter queue for manual review.
type ComprobanteWorker struct {
	ventaRepo       repository.VentaRepository
	comprobanteRepo repository.ComprobanteRepository
	pdf             *infra.VoucherGenerator
	mailer          *infra.Mailer
}

func NewComprobanteWorker(
	ventaRepo repository.VentaRepository,
	comprobanteRepo repository.ComprobanteRepository,
	pdf *infra.VoucherGenerator,
	mailer *infra.Mailer,
) *ComprobanteWorker {
	return &ComprobanteWorker{
		ventaRepo:       ventaRepo,
		comprobanteRepo: comprobanteRepo,
		pdf:             pdf,
		mailer:          mailer,
	}
}

func (w *ComprobanteWorker) Handle(ctx context.Context, rdb *redis.Client, job Job) {
	var payload ComprobantePayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		log.Error().Err(err).Msg("invalid comprobante payload")
		return
	}

	if err := w.process(ctx, payload); err != nil {
		w.handleFailure(ctx, rdb, job, payload, err)
		return
	}
	metrics.ComprobantesGenerados.WithLabelValues("generado").Inc()
}

func (w *ComprobanteWorker) process(ctx context.Context, payload ComprobantePayload) error {
	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		return err
	}

	venta, err := w.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return err
	}

	path, err := w.pdf.GenerateVoucherPDF(venta)
	if err != nil {
		return err
	}

	emailEnviado := false
	if payload.ClienteEmail != "" && w.mailer != nil {
		if err := w.mailer.SendComprobante(payload.ClienteEmail, venta.NumeroVenta, path); err != nil {
			// Email delivery is best effort. The voucher exists on disk,
			// so we record the miss without failing the job.
			log.Warn().
				Str("venta", venta.NumeroVenta).
				Err(err).
				Msg("could not email voucher")
		} else {
			emailEnviado = true
		}
	}

	comp, err := w.comprobanteRepo.FindByVentaID(ctx, ventaID)
	if err != nil {
		return err
	}
	if err := w.comprobanteRepo.MarcarGenerado(ctx, comp.ID, path, emailEnviado); err != nil {
		return err
	}

	log.Info().
		Str("venta", venta.NumeroVenta).
		Str("pdf", path).
		Msg("voucher generated")
	return nil
}

func (w *ComprobanteWorker) handleFailure(ctx context.Context, rdb *redis.Client, job Job, payload ComprobantePayload, cause error) {
	job.Attempts++
	log.Error().
		Str("venta_id", payload.VentaID).
		Int("attempts", job.Attempts).
		Err(cause).
		Msg("voucher generation failed")

	if ventaID, err := uuid.Parse(payload.VentaID); err == nil {
		if comp, err := w.comprobanteRepo.FindByVentaID(ctx, ventaID); err == nil {
			_ = w.comprobanteRepo.MarcarError(ctx, comp.ID, cause.Error(), time.Now().Add(retryBackoff))
		}
	}
	metrics.ComprobantesGenerados.WithLabelValues("error").Inc()

	if job.Attempts >= maxComprobanteAttempts {
		SendToDLQ(ctx, rdb, QueueComprobante, job, cause)
		return
	}

	encoded, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := rdb.LPush(ctx, QueueComprobante, encoded).Err(); err != nil {
		log.Error().Err(err).Msg("failed to requeue comprobante job")
	}
}
