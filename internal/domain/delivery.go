package domain

// DeliveryStatus is the terminal state of one dispatch attempt.
type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliverySkipped DeliveryStatus = "skipped"
	DeliveryFailed  DeliveryStatus = "failed"
)

// DeliveryOutcome reports a single dispatch attempt. It carries no retry state.
type DeliveryOutcome struct {
	Status    DeliveryStatus `json:"status"`
	Recipient string         `json:"recipient,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

// Sent reports whether the message left the process.
func (o DeliveryOutcome) Sent() bool {
	return o.Status == DeliverySent
}

// Skipped builds an outcome for a dispatch that was not attempted.
func Skipped(reason string) DeliveryOutcome {
	return DeliveryOutcome{Status: DeliverySkipped, Reason: reason}
}

// Failed builds an outcome for a dispatch that errored.
func Failed(recipient string, err error) DeliveryOutcome {
	o := DeliveryOutcome{Status: DeliveryFailed, Recipient: recipient}
	if err != nil {
		o.Reason = err.Error()
	}
	return o
}
