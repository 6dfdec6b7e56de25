package auth

// Messages recorded when a failure carries no server supplied text.
const (
	LoginFailedMessage        = "Login failed. Please try again."
	RegistrationFailedMessage = "Registration failed. Please try again."
	RefreshFailedMessage      = "Session refresh failed. Please log in again."
)
