// Package auth implements the identity credential lifecycle: password
// recovery, admin issued invitations and remember-me cookie logins.
//
// Outcomes:
//   - Every workflow call returns an *Outcome holding a status code, the
//     ordered user facing errors and an optional message. Expected failures
//     (bad input, wrong token, missing permission) live in the Outcome. The
//     error return is reserved for failures the caller cannot fix, such as
//     an unavailable store, and is a go-errors *Error.
//   - Checks compose with RunChain, which stops at the first failure so
//     error precedence follows check order.
//
// Tokens:
//   - Verification tokens are the hex SHA-256 digest of 32 random bytes.
//     Reset tokens expire one hour after issuance; invitation tokens do not
//     expire.
//   - A token is consumed by the same conditional update that applies the
//     state change it guards. The update must affect exactly one row, so a
//     replayed or raced token always fails.
//
// Recovery:
//   - RequestReset answers the same way whether or not the account exists.
//     Verification does not tell a wrong token from an unknown name; only
//     an expired match is reported separately.
//
// Storage, mail and session persistence are interfaces. The storage/bunstore,
// mail/mailgun and session/redisstore packages provide implementations.
package auth
