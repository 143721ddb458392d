// Package notify defines the receipt delivery seam. The core records
// whether delivery happened; the transport (SMTP, SMS gateway) lives
// behind the Sender interface and is swappable at wiring time.
package notify

import (
	"context"
	"log/slog"

	"github.com/unipay/unipay/internal/models"
)

// Sender delivers a receipt to a student. Implementations must be safe
// for concurrent use. A returned error means the receipt stays marked
// undelivered; the payment itself is never rolled back over a delivery
// failure.
type Sender interface {
	SendReceipt(ctx context.Context, student *models.Student, payment *models.Payment, receipt *models.Receipt) error
}

// LogSender writes receipt deliveries to the structured log instead of
// sending anything. Used in development and as the default when no
// mail transport is configured.
type LogSender struct{}

func (LogSender) SendReceipt(ctx context.Context, student *models.Student, payment *models.Payment, receipt *models.Receipt) error {
	slog.Info("receipt issued",
		"student_number", student.StudentNumber,
		"email", student.Email,
		"or_number", receipt.ORNumber,
		"amount", payment.Amount.String(),
	)
	return nil
}
