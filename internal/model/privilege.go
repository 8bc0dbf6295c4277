package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "stock:transfer"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"

	PrivProductView   = "product:view"
	PrivProductCreate = "product:create"
	PrivProductUpdate = "product:update"
	PrivProductDelete = "product:delete"

	PrivStockTransfer = "stock:transfer"
	PrivStockRestock  = "stock:restock"

	PrivTransactionCreate = "transaction:create"
	PrivLogView           = "log:view"
	PrivDashboardView     = "dashboard:view"

	PrivExpenseView   = "expense:view"
	PrivExpenseManage = "expense:manage"

	PrivDrawerOperate = "drawer:operate"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivStockTransfer, Name: "Transfer Stock To Shop"},
	{Code: PrivStockRestock, Name: "Restock Product"},
	{Code: PrivTransactionCreate, Name: "Process Sale Or Return"},
	{Code: PrivLogView, Name: "View Audit Log"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	{Code: PrivExpenseView, Name: "View Expenses"},
	{Code: PrivExpenseManage, Name: "Manage Expenses"},
	{Code: PrivDrawerOperate, Name: "Operate Cash Drawer"},
}

// CashierPrivileges is the fixed privilege set given to the CASHIER role.
var CashierPrivileges = []string{
	PrivProductView,
	PrivTransactionCreate,
	PrivDrawerOperate,
	PrivDashboardView,
}

// adminExcluded lists privileges ADMIN does not get; everything else is granted.
var adminExcluded = map[string]bool{
	PrivUserCreate:          true,
	PrivUserUpdate:          true,
	PrivUserDelete:          true,
	PrivUserUpdatePrivilege: true,
}

// PrivilegesForRole filters all into the subset the given role should hold.
func PrivilegesForRole(roleCode string, all []Privilege) []Privilege {
	var out []Privilege
	switch roleCode {
	case RoleMasterAdmin:
		return all
	case RoleAdmin:
		for _, p := range all {
			if !adminExcluded[p.Code] {
				out = append(out, p)
			}
		}
	case RoleCashier:
		allowed := make(map[string]bool, len(CashierPrivileges))
		for _, c := range CashierPrivileges {
			allowed[c] = true
		}
		for _, p := range all {
			if allowed[p.Code] {
				out = append(out, p)
			}
		}
	}
	return out
}
