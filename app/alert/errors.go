package alert

import "fmt"

// ConfigurationError marks an alert whose definition cannot be processed:
// a missing filter reference or an unrecognized frequency. It is surfaced
// per-alert in the run summary and never aborts the batch.
type ConfigurationError struct {
	AlertID string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("alert %s misconfigured: %s", e.AlertID, e.Reason)
}

// DeliveryError wraps a notification collaborator failure. The alert stays
// eligible for retry on the next cycle.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// StoreError marks the underlying persistence as unavailable. It is fatal
// for the whole run since no progress can be made without the store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
