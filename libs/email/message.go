package email

import "time"

// EventType is the Kafka event type of a queued e-mail.
const EventType = "site.notification.email.v1"

// Message is the wire form of an e-mail handed from the site service to the
// notification service.
type Message struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	To        []string  `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func (m Message) Valid() bool {
	return len(cleanRecipients(m.To)) > 0 && m.Subject != ""
}
