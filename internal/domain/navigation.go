package domain

// Destination names a navigation target produced by the session state
// machine. Routing is an external collaborator, so destinations are
// abstract names rather than literal paths.
type Destination string

const (
	DestinationHome           Destination = "home"
	DestinationLogin          Destination = "login"
	DestinationSignup         Destination = "signup"
	DestinationForgotPassword Destination = "forgotPassword"
	DestinationResetPassword  Destination = "resetPassword"
	DestinationCart           Destination = "cart"
	DestinationCheckout       Destination = "checkout"
	DestinationOrders         Destination = "orders"
	DestinationAdminHome      Destination = "adminHome"
)
