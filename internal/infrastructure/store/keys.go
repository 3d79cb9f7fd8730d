package store

// Keys of the persisted storefront state.
const (
	KeyCart           = "cart"
	KeyCartShipping   = "cartShipping"
	KeyOrders         = "orders"
	KeyProducts       = "products"
	KeySiteSettings   = "siteSettings"
	KeyAdminLoggedIn  = "adminLoggedIn"
	KeyAdminUsername  = "adminUsername"
	KeyLoginTime      = "loginTime"
	KeyRememberedUser = "rememberedUser"
)
