package upload

import "fmt"

// InitError means the storage gateway refused or failed to open a multipart
// session; nothing was uploaded.
type InitError struct {
	Err error
}

func (e *InitError) Error() string { return fmt.Sprintf("upload init: %v", e.Err) }
func (e *InitError) Unwrap() error { return e.Err }

// PartError means one part transfer failed. The pipeline aborts the whole
// session on the first part failure; a silent gap would corrupt the final
// object.
type PartError struct {
	PartNumber int
	Err        error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("upload part %d: %v", e.PartNumber, e.Err)
}
func (e *PartError) Unwrap() error { return e.Err }

// CompleteError means the gateway rejected the completion call; the session
// is still open and the caller decides between abort and retry.
type CompleteError struct {
	Err error
}

func (e *CompleteError) Error() string { return fmt.Sprintf("upload complete: %v", e.Err) }
func (e *CompleteError) Unwrap() error { return e.Err }

// IngestionError means the post-completion video handoff failed. The object
// is durably stored; only the ingestion is missing, and it can be retried by
// finalized key.
type IngestionError struct {
	Key string
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Key, e.Err)
}
func (e *IngestionError) Unwrap() error { return e.Err }

// GatewayError carries a non-success HTTP response from the storage gateway
// so the upload surface can propagate the gateway's own status code.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Body)
}
