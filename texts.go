package auth

// Text keys used by the workflows.
const (
	TextInvalidRequest     = "ERROR_INVALID_REQUEST"
	TextInvalidPermissions = "ERROR_INVALID_PERMISSIONS"
	TextInvalidToken       = "ERROR_INVALID_TOKEN"
	TextInvalidCaptcha     = "ERROR_INVALID_CAPTCHA"
	TextUnknownError       = "ERROR_UNKNOWN"

	TextCookieInvalid    = "LOGIN_COOKIE_ERROR_INVALID"
	TextCookieSuccessful = "LOGIN_COOKIE_SUCCESSFUL"

	TextRecoveryNameEmailEmpty   = "LOGIN_RECOVERY_ERROR_NAME_EMAIL_EMPTY"
	TextRecoveryWriteTokenFail   = "LOGIN_RECOVERY_ERROR_WRITE_TOKEN_FAIL"
	TextRecoveryMailSendingError = "LOGIN_RECOVERY_MAIL_SENDING_ERROR"
	TextRecoverySuccessful       = "LOGIN_RECOVERY_SUCCESSFUL_HANDLING"
	TextRecoveryNameHashNotFound = "LOGIN_RECOVERY_NAME_HASH_NOT_FOUND"
	TextRecoveryLinkValidated    = "LOGIN_RECOVERY_MAIL_LINK_VALIDATED"
	TextRecoveryLinkExpired      = "LOGIN_RECOVERY_MAIL_LINK_EXPIRED"

	TextUserIDEmpty     = "USER_ID_ERROR_EMPTY"
	TextUserIDBadFormat = "USER_ID_ERROR_BAD_FORMAT"

	TextUserNameEmpty        = "USER_NAME_ERROR_EMPTY"
	TextUserNameBadPattern   = "USER_NAME_ERROR_BAD_PATTERN"
	TextUserNameAlreadyTaken = "USER_NAME_ERROR_ALREADY_TAKEN"

	TextUserEmailEmpty        = "USER_EMAIL_ERROR_EMPTY"
	TextUserEmailBadPattern   = "USER_EMAIL_ERROR_BAD_PATTERN"
	TextUserEmailRepeatWrong  = "USER_EMAIL_ERROR_REPEAT_WRONG"
	TextUserEmailAlreadyTaken = "USER_EMAIL_ERROR_ALREADY_TAKEN"

	TextPasswordEmpty          = "USER_PASSWORD_ERROR_EMPTY"
	TextPasswordRepeatWrong    = "USER_PASSWORD_ERROR_REPEAT_WRONG"
	TextPasswordTooShort       = "USER_PASSWORD_ERROR_TOO_SHORT"
	TextPasswordChangeOK       = "USER_PASSWORD_CHANGE_SUCCESSFUL"
	TextPasswordChangeFailed   = "USER_PASSWORD_CHANGE_FAILED"
	TextPasswordChangeBadToken = "USER_PASSWORD_CHANGE_INVALID_TOKEN"

	TextNewAccountCreationFailed   = "USER_NEW_ACCOUNT_ERROR_CREATION_FAILED"
	TextNewAccountMailSendingError = "USER_NEW_ACCOUNT_MAIL_SENDING_ERROR"
	TextNewAccountActivationOK     = "USER_NEW_ACCOUNT_ACTIVATION_SUCCESSFUL"
	TextNewAccountActivationFailed = "USER_NEW_ACCOUNT_ACTIVATION_FAILED"

	TextInvitationValidated   = "USER_INVITATION_VALIDATION_SUCCESSFUL"
	TextInvitationSubject     = "USER_INVITATION_EMAIL_SUBJECT"
	TextInvitationTitle       = "USER_INVITATION_EMAIL_CONTENT_TITLE"
	TextInvitationPart1       = "USER_INVITATION_EMAIL_CONTENT_PART_1"
	TextInvitationPart2       = "USER_INVITATION_EMAIL_CONTENT_PART_2"
	TextInvitationPart3       = "USER_INVITATION_EMAIL_CONTENT_PART_3"
	TextInvitationLinkText    = "USER_INVITATION_EMAIL_LINK_TEXT"
	TextInvitationSentSuccess = "USER_INVITATION_EMAIL_SENT_SUCCESSFULLY"
)

// TextProvider resolves a localized string for a key.
type TextProvider interface {
	Text(key string) string
}

// TextProviderFunc adapts a function to TextProvider.
type TextProviderFunc func(key string) string

// Text implements TextProvider.
func (f TextProviderFunc) Text(key string) string {
	return f(key)
}

// TextCatalog is a TextProvider backed by host overrides with a fallback to
// the built in English texts. Unknown keys resolve to the key itself.
type TextCatalog struct {
	overrides map[string]string
}

// NewTextCatalog returns a catalog with the given overrides.
func NewTextCatalog(overrides map[string]string) *TextCatalog {
	o := make(map[string]string, len(overrides))
	for k, v := range overrides {
		o[k] = v
	}
	return &TextCatalog{overrides: o}
}

// Text implements TextProvider.
func (c *TextCatalog) Text(key string) string {
	if c != nil {
		if v, ok := c.overrides[key]; ok {
			return v
		}
	}
	if v, ok := defaultTexts[key]; ok {
		return v
	}
	return key
}

func normalizeTextProvider(p TextProvider) TextProvider {
	if p == nil {
		return NewTextCatalog(nil)
	}
	return p
}

var defaultTexts = map[string]string{
	TextInvalidRequest:     "Invalid request",
	TextInvalidPermissions: "Invalid permissions",
	TextInvalidToken:       "Invalid token",
	TextInvalidCaptcha:     "The entered captcha security characters were wrong.",
	TextUnknownError:       "Unknown error occurred!",

	TextCookieInvalid:    "Your remember-me-cookie is invalid.",
	TextCookieSuccessful: "You were successfully logged in via the remember-me-cookie.",

	TextRecoveryNameEmailEmpty:   "Username or email field was empty.",
	TextRecoveryWriteTokenFail:   "Could not write token to database.",
	TextRecoveryMailSendingError: "Password reset mail could not be sent.",
	TextRecoverySuccessful:       "Your request has been saved. If we find a such email or name in our database, a password reset mail will be send. Please check your inbox.",
	TextRecoveryNameHashNotFound: "Username/Verification code combination does not exist.",
	TextRecoveryLinkValidated:    "Password reset validation link is valid. Please change the password now.",
	TextRecoveryLinkExpired:      "Your reset link has expired. Please use the reset link within one hour.",

	TextUserIDEmpty:     "User id field was empty.",
	TextUserIDBadFormat: "User id field was incorrect.",

	TextUserNameEmpty:        "Username field was empty.",
	TextUserNameBadPattern:   "Username does not fit the name pattern: only a-Z and numbers are allowed, 2 to 64 characters.",
	TextUserNameAlreadyTaken: "Sorry, that username is already taken. Please choose another one.",

	TextUserEmailEmpty:        "Email field was empty.",
	TextUserEmailBadPattern:   "Sorry, your chosen email does not fit into the email naming pattern.",
	TextUserEmailRepeatWrong:  "Email and email repeat are not the same",
	TextUserEmailAlreadyTaken: "Sorry, that email is already in use. Please choose another one.",

	TextPasswordEmpty:          "Password field was empty.",
	TextPasswordRepeatWrong:    "Password and password repeat are not the same.",
	TextPasswordTooShort:       "Password has a minimum length of 6 characters.",
	TextPasswordChangeOK:       "Password successfully changed.",
	TextPasswordChangeFailed:   "Sorry, your password changing failed.",
	TextPasswordChangeBadToken: "No or invalid password reset token.",

	TextNewAccountCreationFailed:   "Sorry, your registration failed. Please go back and try again.",
	TextNewAccountMailSendingError: "Verification mail could not be sent.",
	TextNewAccountActivationOK:     "Activation was successful! You can now log in.",
	TextNewAccountActivationFailed: "Sorry, no such id/verification code combination here!",

	TextInvitationValidated:   "Please define your user name and password to complete your registration",
	TextInvitationSubject:     "Invitation received from %s",
	TextInvitationTitle:       "Welcome !",
	TextInvitationPart1:       "You receive this email from %s. An account has been created for you.",
	TextInvitationPart2:       "You need to click on the link below to complete your registration and activate your account. You will be asked to define your user name and a password.",
	TextInvitationPart3:       "This link stays valid until your account is activated.",
	TextInvitationLinkText:    "Create my account now",
	TextInvitationSentSuccess: "An invitation mail has been sent successfully. The user will need to complete its registration before to log in.",
}
