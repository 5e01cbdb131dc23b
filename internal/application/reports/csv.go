package reports

import (
	"encoding/csv"
	"io"
	"strconv"

	"sfms-backend/internal/domain"
)

// utf8BOM lets Excel detect UTF-8 for the Thai headers.
const utf8BOM = "\ufeff"

// ExportFilename is the attachment name of the CSV export.
const ExportFilename = "borrow-stats.csv"

// WriteBorrowStatsCSV renders stats in the staff export layout.
func WriteBorrowStatsCSV(w io.Writer, stats *BorrowStats) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	kind := actionLabel(stats.Action)

	cw := csv.NewWriter(w)
	records := [][]string{
		{"ช่วงวันที่", stats.From + " - " + stats.To},
		{"ประเภท", kind},
		{},
		{"ลำดับ", "รายการ", "จำนวนครั้ง"},
	}
	for i, r := range stats.Rows {
		records = append(records, []string{strconv.Itoa(i + 1), r.Equipment, strconv.Itoa(r.Qty)})
	}
	records = append(records, []string{}, []string{"รวมทั้งหมด", "", strconv.Itoa(stats.Total)})

	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

// actionLabel names the report type. Any action other than borrow or
// return is the combined report.
func actionLabel(a domain.BorrowAction) string {
	switch a {
	case domain.ActionBorrow:
		return "ยืม"
	case domain.ActionReturn:
		return "คืน"
	default:
		return "ยืมและคืน"
	}
}
