package worker

// Processes receipt jobs from QueueReceipt: renders the paid invoice to a PDF
// under the storage path and, when the customer left an email address,
// enqueues an email job carrying the file.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/raw-dani/pos-only/internal/infra"
	"github.com/raw-dani/pos-only/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InvoiceFinder loads a hydrated invoice.
type InvoiceFinder interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
}

// StoreSettings returns the current store identity.
type StoreSettings interface {
	Current(ctx context.Context) (*model.Setting, error)
}

type ReceiptWorker struct {
	invoices    InvoiceFinder
	settings    StoreSettings
	dispatcher  *Dispatcher
	storagePath string
}

func NewReceiptWorker(invoices InvoiceFinder, settings StoreSettings, dispatcher *Dispatcher, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{
		invoices:    invoices,
		settings:    settings,
		dispatcher:  dispatcher,
		storagePath: storagePath,
	}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}
	id, err := uuid.Parse(payload.InvoiceID)
	if err != nil {
		log.Error().Str("invoice_id", payload.InvoiceID).Msg("receipt_worker: invalid invoice_id")
		return nil
	}

	inv, err := w.invoices.Find(ctx, id)
	if err != nil {
		return fmt.Errorf("load invoice %s: %w", id, err)
	}
	if inv.Status != model.InvoicePaid {
		log.Warn().Str("invoice_id", id.String()).Str("status", inv.Status).Msg("receipt_worker: invoice not paid, skipping")
		return nil
	}
	store, err := w.settings.Current(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	path, err := infra.SaveReceiptPDF(inv, store, w.storagePath)
	if err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	log.Info().Str("pdf", path).Str("invoice_id", id.String()).Msg("receipt_worker: PDF generated")

	if inv.CustomerEmail == nil || *inv.CustomerEmail == "" || w.dispatcher == nil {
		return nil
	}
	job := EmailJobPayload{
		ToEmail: *inv.CustomerEmail,
		Subject: fmt.Sprintf("%s receipt %s", store.StoreName, inv.InvoiceNumber),
		Body:    fmt.Sprintf("Thank you for shopping at %s.\nTotal: %s %s", store.StoreName, store.Currency, inv.Total.StringFixed(2)),
		PDFPath: path,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, job); err != nil {
		// the PDF exists; a retry would only render it again
		log.Warn().Err(err).Str("invoice_id", id.String()).Msg("receipt_worker: failed to enqueue email")
	}
	return nil
}
