package notificator

// NotificationWriter notifies all the subscribers
// about new device events.
type NotificationWriter interface {
	// Notify must send the event to the specified topic.
	Notify(topic string, ev Event)
}
