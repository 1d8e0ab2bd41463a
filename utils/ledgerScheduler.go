package utils

import (
	"log"
	"strconv"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"

	"github.com/robfig/cron/v3"
)

// logLedgerSweep logs sweeper events with timestamp
func logLedgerSweep(message string) {
	log.Printf("[LEDGER-SWEEP %s] %s", time.Now().Format(time.RFC3339), message)
}

// sweepStalePendingPayments expires pending ledger entries whose checkout
// session lapsed but whose expired event never arrived. A late completed
// signal for a swept session is still honored: completed wins over expired
// in either order.
func sweepStalePendingPayments() {
	db := database.Database.Db

	// Session lifetime plus slack for slow webhook delivery
	grace := time.Duration(config.AppConfig.CheckoutExpiryMinutes+15) * time.Minute
	cutoff := time.Now().Add(-grace)
	now := time.Now()

	res := db.Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.PaymentStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     models.PaymentStatusExpired,
			"expired_at": now,
		})
	if res.Error != nil {
		logLedgerSweep("Error expiring stale pending payments: " + res.Error.Error())
		return
	}
	if res.RowsAffected > 0 {
		logLedgerSweep("Expired " + strconv.FormatInt(res.RowsAffected, 10) + " stale pending payments")
	}
}

// StartLedgerScheduler runs the stale-payment sweep every 10 minutes
func StartLedgerScheduler() {
	c := cron.New()

	if _, err := c.AddFunc("@every 10m", sweepStalePendingPayments); err != nil {
		log.Fatalf("Failed to schedule ledger sweep: %v", err)
	}

	c.Start()
	logLedgerSweep("Ledger scheduler started")
}
