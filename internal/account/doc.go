// Package account implements the flows that create sessions: signup,
// signin and organization switching. It is the only code that touches
// password hashes, and the credential-store lookup here is the sole
// blocking call in the authentication path; everything downstream of the
// minted token is pure computation.
package account
