package model

import (
	"time"
)

// SignerStatus is the response state of a single signer
type SignerStatus string

// RequestStatus is the aggregate state of a signature request
type RequestStatus string

// SignerStatus constants
const (
	SignerPending  SignerStatus = "Pending"
	SignerSigned   SignerStatus = "Signed"
	SignerDeclined SignerStatus = "Declined"
)

// RequestStatus constants
const (
	RequestPending   RequestStatus = "Pending"
	RequestCompleted RequestStatus = "Completed"
	RequestDeclined  RequestStatus = "Declined"
)

// SystemActor is the actor recorded for entries not caused by a signer
const SystemActor = "System"

// Activity log descriptions
const (
	DescriptionCreated  = "Request created and sent."
	DescriptionSigned   = "Signed the document."
	DescriptionDeclined = "Declined to sign the document."
)

// Terminal reports whether no further response is expected from the signer
func (s SignerStatus) Terminal() bool {
	return s == SignerSigned || s == SignerDeclined
}

func (s RequestStatus) Terminal() bool {
	return s == RequestCompleted || s == RequestDeclined
}

// Signer is a participant who must sign or decline a request
type Signer struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Status   SignerStatus `json:"status"`
	SignedAt *time.Time   `json:"signed_at,omitempty"`
}

// ActivityLogEntry is an immutable record of something that happened to a request
type ActivityLogEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Actor       string    `json:"actor"`
}

// SignatureRequest is one document-signing workflow with its signers and history
type SignatureRequest struct {
	ID           string             `json:"id"`
	DocumentName string             `json:"document_name"`
	DocumentURL  string             `json:"document_url"`
	Message      string             `json:"message"`
	CreatedAt    time.Time          `json:"created_at"`
	Status       RequestStatus      `json:"status"`
	Signers      []Signer           `json:"signers"`
	ActivityLog  []ActivityLogEntry `json:"activity_log"`
}

// DeriveStatus computes the aggregate status from signer statuses.
// A decline anywhere wins over completion.
func DeriveStatus(signers []Signer) RequestStatus {
	allSigned := len(signers) > 0
	for _, s := range signers {
		if s.Status == SignerDeclined {
			return RequestDeclined
		}
		if s.Status != SignerSigned {
			allSigned = false
		}
	}
	if allSigned {
		return RequestCompleted
	}
	return RequestPending
}

// Signer returns the signer with the given id
func (r *SignatureRequest) Signer(id string) (Signer, bool) {
	for _, s := range r.Signers {
		if s.ID == id {
			return s, true
		}
	}
	return Signer{}, false
}

// Progress returns how many signers have signed out of the total
func (r *SignatureRequest) Progress() (signed, total int) {
	for _, s := range r.Signers {
		if s.Status == SignerSigned {
			signed++
		}
	}
	return signed, len(r.Signers)
}

// Clone returns a deep copy sharing no memory with r
func (r *SignatureRequest) Clone() *SignatureRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.Signers = make([]Signer, len(r.Signers))
	for i, s := range r.Signers {
		if s.SignedAt != nil {
			t := *s.SignedAt
			s.SignedAt = &t
		}
		c.Signers[i] = s
	}
	c.ActivityLog = append([]ActivityLogEntry(nil), r.ActivityLog...)
	return &c
}
