// Package auth implements the account and session backend for the Contact
// Book API: registration, email verification, password recovery, Google
// sign-in, and stateful bearer sessions.
//
// Account lifecycle:
//   - Users start unverified and hold a single-use verification token until
//     email ownership is confirmed. Verification is monotonic; the token is
//     cleared exactly once.
//   - Each account holds at most one live session token. Logging in overwrites
//     the stored token (invalidating any prior session) and logging out clears
//     it, regardless of the JWT expiry still embedded in old tokens.
//   - Password recovery issues an opaque reset token with a one hour expiry;
//     redemption is a conditional store update so concurrent attempts resolve
//     to exactly one winner.
//
// Flows are expressed as command handlers (RegisterUserHandler,
// VerifyEmailHandler, ...) that operate against the RepositoryManager and a
// Mailer collaborator. HTTP plumbing lives in AuthController and the
// middleware/sessionware package.
package auth
