// Package backend declares the contract between the client stores and the
// backend platform that owns authentication, structured data and object
// storage. The stores in internal/client/services depend only on these
// interfaces; internal/platform provides the concrete adapters.
//
// Implementations report well-known failures with the sentinel errors in
// errors.go so callers can match them with errors.Is. Any other error is
// treated as transport or platform failure.
package backend
