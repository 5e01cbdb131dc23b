package constants

import pkgconst "sfms-backend/internal/pkg/constants"

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]string{
	RecordCheckin:   {pkgconst.User, pkgconst.Staff},
	BorrowEquipment: {pkgconst.User, pkgconst.Staff},
	ManageEquipment: {pkgconst.Staff},
	ManageLedger:    {pkgconst.Staff},
	ViewReports:     {pkgconst.Staff},
	ManageScanCodes: {pkgconst.Staff},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
