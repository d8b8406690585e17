// Package store provides credential persistence for plotline.
//
// It is the credential store adapter the auth core consults: users (with
// password hashes and an active flag) and the organizations that own them.
// The auth core only ever reads resolved records; what engine persists them
// is this package's concern alone. Two implementations ship: SQLiteStore
// for real deployments and MockStore for tests.
package store
