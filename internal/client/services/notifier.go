// Package services holds the client-side stores: the Session Store tracks who
// is logged in, the Catalog Store caches recipes and the user's bookmarks.
// Both talk to the platform through the backend contract and report the
// outcome of every user action on a Notifier.
package services

// Notifier receives one toast per user action. *notify.Channel implements it.
type Notifier interface {
	Success(text string)
	Error(text string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
