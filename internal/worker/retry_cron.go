package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"modapos/internal/repository"
)

const retryScanInterval = 5 * time.Minute

// StartRetryCron periodically re-enqueues vouchers stuck in error state
// whose next retry window has passed.
func StartRetryCron(ctx context.Context, dispatcher *Dispatcher, comprobanteRepo repository.ComprobanteRepository) {
	go func() {
		ticker := time.NewTicker(retryScanInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scanPendientes(ctx, dispatcher, comprobanteRepo)
			}
		}
	}()
}

func scanPendientes(ctx context.Context, dispatcher *Dispatcher, comprobanteRepo repository.ComprobanteRepository) {
	pendientes, err := comprobanteRepo.ListPendientesRetry(ctx, 50)
	if err != nil {
		log.Error().Err(err).Msg("retry cron: failed to list pending vouchers")
		return
	}
	for _, c := range pendientes {
		payload := ComprobantePayload{VentaID: c.VentaID.String()}
		if c.EmailCliente != nil {
			payload.ClienteEmail = *c.EmailCliente
		}
		if err := dispatcher.EnqueueComprobante(ctx, payload); err != nil {
			log.Error().Str("venta_id", payload.VentaID).Err(err).Msg("retry cron: enqueue failed")
			continue
		}
		log.Info().Str("venta_id", payload.VentaID).Int("retries", c.RetryCount).Msg("voucher re-enqueued")
	}
}
