package auth

import "github.com/glowmart/glowmart-api/internal/domain/user"

// Action names an operation subject to authorization.
type Action string

const (
	ActionShop          Action = "shop"           // cart, wishlist, addresses, checkout, own orders, reviews
	ActionManageCatalog Action = "manage_catalog" // product CRUD
	ActionManageOrders  Action = "manage_orders"  // list all orders, change status
	ActionManageStore   Action = "manage_store"   // settings, dashboard, events
)

// capabilities is the single place authorization rules live.
var capabilities = map[user.Role]map[Action]bool{
	user.RoleCustomer: {
		ActionShop: true,
	},
	user.RoleAdmin: {
		ActionShop:          true,
		ActionManageCatalog: true,
		ActionManageOrders:  true,
		ActionManageStore:   true,
	},
}

// Can reports whether a role is allowed to perform an action.
func Can(role user.Role, action Action) bool {
	return capabilities[role][action]
}
