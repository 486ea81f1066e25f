package notification

// Channel delivers one message to a list of recipients. Implementations
// decide what a recipient string means (email address, device token).
type Channel interface {
	Send(to []string, subject, body string) error
}
