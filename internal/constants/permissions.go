package constants

const (
	RecordCheckin   = "record_checkin"
	BorrowEquipment = "borrow_equipment"
	ManageEquipment = "manage_equipment"
	ManageLedger    = "manage_ledger"
	ViewReports     = "view_reports"
	ManageScanCodes = "manage_scan_codes"
)
