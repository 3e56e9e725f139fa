// Package notifications pushes export outcomes to an ntfy topic.
//
// A Notifier is an export recorder: the orchestrator hands it the same
// history entry it journals, and the notifier turns it into a short message.
// Failures are always sent; successes only when notify_success is set. With
// no topic configured NewNotifier returns nil and nothing is wired.
package notifications
