package domain

// BaselineTrustScore is the starting trust score for every user. The cached
// TrustScore must always equal the baseline plus the sum of all ledger deltas.
const BaselineTrustScore int32 = 100

type Role string

const (
	RoleBorrower Role = "BORROWER"
	RoleStaff    Role = "STAFF"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

type Capability string

const (
	CapabilityApproveReservation Capability = "approve_reservation"
	CapabilityConfirmReturn      Capability = "confirm_return"
	CapabilityManageItems        Capability = "manage_items"
	CapabilityForceTransition    Capability = "force_transition"
	CapabilityRunOverdueScan     Capability = "run_overdue_scan"
	CapabilityBulkOperations     Capability = "bulk_operations"
	CapabilityDeleteReservations Capability = "delete_reservations"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleStaff: {
		CapabilityApproveReservation: true,
		CapabilityConfirmReturn:      true,
		CapabilityManageItems:        true,
		CapabilityRunOverdueScan:     true,
		CapabilityBulkOperations:     true,
	},
	RoleManager: {
		CapabilityApproveReservation: true,
		CapabilityConfirmReturn:      true,
		CapabilityManageItems:        true,
		CapabilityRunOverdueScan:     true,
		CapabilityBulkOperations:     true,
	},
	RoleAdmin: {
		CapabilityApproveReservation: true,
		CapabilityConfirmReturn:      true,
		CapabilityManageItems:        true,
		CapabilityForceTransition:    true,
		CapabilityRunOverdueScan:     true,
		CapabilityBulkOperations:     true,
		CapabilityDeleteReservations: true,
	},
}

// Can reports whether role holds the given capability.
func Can(role Role, cap Capability) bool {
	return roleCapabilities[role][cap]
}

// IsStaffRole reports whether role is a staff-level role (acts on any reservation).
func IsStaffRole(role Role) bool {
	switch role {
	case RoleStaff, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Actor identifies who is performing an operation.
type Actor struct {
	UserID int32 `json:"user_id"`
	Role   Role  `json:"role"`
}

type User struct {
	ID         int32  `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       Role   `json:"role"`
	TrustScore int32  `json:"trust_score"`
	CreatedOn  string `json:"created_on"`
	UpdatedOn  string `json:"updated_on"`
}
