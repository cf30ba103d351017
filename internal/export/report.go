package export

import (
	"fmt"
	"io"
	"time"

	"meetcal/internal/models"
)

var bookingColumns = []string{
	"Reference", "Guest", "Email", "Date", "Start", "End", "Duration (min)", "Status", "Created",
}

// WriteBookingsReport renders a host's bookings as a one-sheet workbook.
func WriteBookingsReport(w io.Writer, hostID string, from, to time.Time, bookings []models.Booking) error {
	writer := NewExcelizeWriter()
	defer writer.Close()

	sheet := fmt.Sprintf("%s %s", hostID, from.Format("2006-01-02"))
	if err := writer.AddSheet(sheet); err != nil {
		return err
	}
	if err := writer.WriteHeader(bookingColumns); err != nil {
		return err
	}

	for _, b := range bookings {
		row := []interface{}{
			b.Reference,
			b.GuestName,
			b.GuestEmail,
			b.StartTime.Format("2006-01-02"),
			b.StartTime.Format("15:04"),
			b.EndTime.Format("15:04"),
			int(b.EndTime.Sub(b.StartTime).Minutes()),
			b.Status,
			b.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := writer.WriteRow(row); err != nil {
			return fmt.Errorf("write booking %s: %w", b.Reference, err)
		}
	}

	return writer.Save(w)
}

// ReportFilename builds the download name for a host's report.
func ReportFilename(hostID string, from, to time.Time) string {
	return fmt.Sprintf("bookings_%s_%s_%s.xlsx",
		hostID, from.Format("2006-01-02"), to.Format("2006-01-02"))
}
