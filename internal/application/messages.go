package application

// User-facing messages returned in Result.Message / Result.Error.
const (
	MsgEmailExists          = "Email already exists"
	MsgUsernameExists       = "Username already exists"
	MsgRegistered           = "Registration successful. Confirmation code sent to your email."
	MsgRegisteredMailFailed = "Registration successful, but failed to send confirmation email. Please request a new code."
	MsgRegisterFailed       = "Registration failed. Please try again."
	MsgInvalidLogin         = "Invalid username, email, or email not confirmed."
	MsgInvalidPassword      = "Invalid password"
	MsgLoginFailed          = "Login failed. Please try again."
	MsgCodeRequired         = "Confirmation code is required."
	MsgInvalidCode          = "Invalid confirmation code."
	MsgAlreadyConfirmed     = "Email is already confirmed."
	MsgCodeExpired          = "Confirmation code has expired. Please request a new code."
	MsgEmailConfirmed       = "Email confirmed successfully. You can now log in."
	MsgConfirmFailed        = "Email confirmation failed. Please try again."
	MsgEmailRequired        = "Email is required."
	MsgEmailNotFound        = "User with this email not found."
	MsgCodeSent             = "Confirmation code sent to your email."
	MsgCodeSendFailed       = "Failed to send confirmation email. Please try again later."
	MsgCodeRequestFailed    = "Failed to process request. Please try again."
	MsgInvalidRefreshToken  = "Invalid refresh token"
	MsgRefreshTokenExpired  = "Refresh token has expired"
	MsgRefreshFailed        = "Token refresh failed. Please try again."
	MsgLoggedOut            = "Logged out successfully"
	MsgLogoutFailed         = "Logout failed. Please try again."
	MsgUserNotFound         = "User not found"
	MsgGetUserFailed        = "Failed to retrieve user information"
	MsgModifiedConcurrently = "Account was modified concurrently. Please try again."
)
