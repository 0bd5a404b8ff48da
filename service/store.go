package service

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/V10L1/modulo-assinatura/model"
	"github.com/google/uuid"
)

// RequestStore is the in-memory repository of signature requests and the
// only writer of signer transitions. All state is lost when the process exits.
type RequestStore struct {
	mu       sync.RWMutex
	requests map[string]*model.SignatureRequest
	order    []string // most recent first

	now   func() time.Time
	newID func() string

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// StoreOption customises a RequestStore
type StoreOption func(*RequestStore)

// WithClock overrides the time source
func WithClock(now func() time.Time) StoreOption {
	return func(s *RequestStore) { s.now = now }
}

// WithIDGenerator overrides the id generator used for requests, signers and log entries
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *RequestStore) { s.newID = newID }
}

// NewRequestStore creates an empty store
func NewRequestStore(opts ...StoreOption) *RequestStore {
	s := &RequestStore{
		requests:  make(map[string]*model.SignatureRequest),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignerInput names a signer at creation time
type SignerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CreateRequestInput is everything the sender provides for a new request
type CreateRequestInput struct {
	DocumentName string
	DocumentURL  string
	Message      string
	Signers      []SignerInput
}

// Validate checks creation input without touching any store
func (in *CreateRequestInput) Validate() error {
	if strings.TrimSpace(in.DocumentName) == "" {
		return invalid("document_name", "is required")
	}
	if len(in.Signers) == 0 {
		return invalid("signers", "at least one signer is required")
	}
	for i, s := range in.Signers {
		if strings.TrimSpace(s.Name) == "" {
			return invalid(fmt.Sprintf("signers[%d].name", i), "is required")
		}
		email := strings.TrimSpace(s.Email)
		if email == "" {
			return invalid(fmt.Sprintf("signers[%d].email", i), "is required")
		}
		if !strings.Contains(email, "@") {
			return invalid(fmt.Sprintf("signers[%d].email", i), "%q is not an email address", email)
		}
	}
	return nil
}

// Create validates the input and stores a new pending request at the head of the store
func (s *RequestStore) Create(in CreateRequestInput) (*model.SignatureRequest, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	now := s.now()
	req := &model.SignatureRequest{
		ID:           s.newID(),
		DocumentName: strings.TrimSpace(in.DocumentName),
		DocumentURL:  in.DocumentURL,
		Message:      in.Message,
		CreatedAt:    now,
		Status:       model.RequestPending,
		Signers:      make([]model.Signer, len(in.Signers)),
		ActivityLog: []model.ActivityLogEntry{{
			ID:          s.newID(),
			Timestamp:   now,
			Description: model.DescriptionCreated,
			Actor:       model.SystemActor,
		}},
	}
	for i, si := range in.Signers {
		req.Signers[i] = model.Signer{
			ID:     s.newID(),
			Name:   strings.TrimSpace(si.Name),
			Email:  strings.TrimSpace(si.Email),
			Status: model.SignerPending,
		}
	}

	s.requests[req.ID] = req
	s.order = append([]string{req.ID}, s.order...)
	snapshot := req.Clone()
	s.mu.Unlock()

	s.publish(Event{Type: EventRequestCreated, Request: snapshot})
	return snapshot.Clone(), nil
}

// Get returns a copy of the request with the given id
func (s *RequestStore) Get(id string) (*model.SignatureRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("signature request %q: %w", id, ErrNotFound)
	}
	return req.Clone(), nil
}

// List returns copies of every request, most recent first
func (s *RequestStore) List() []*model.SignatureRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*model.SignatureRequest, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.requests[id].Clone())
	}
	return result
}

// Count returns the number of requests in the store
func (s *RequestStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.requests)
}

// UpdateSignerStatus records a signer's response, appends the matching log
// entry and recomputes the request status in one step. Repeated and
// reversing responses are accepted and each one is logged.
func (s *RequestStore) UpdateSignerStatus(requestID, signerID string, status model.SignerStatus) (*model.SignatureRequest, error) {
	var description string
	switch status {
	case model.SignerSigned:
		description = model.DescriptionSigned
	case model.SignerDeclined:
		description = model.DescriptionDeclined
	default:
		return nil, invalid("status", "%q is not a signer response", status)
	}

	s.mu.Lock()
	current, ok := s.requests[requestID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("signature request %q: %w", requestID, ErrNotFound)
	}

	idx := -1
	for i := range current.Signers {
		if current.Signers[i].ID == signerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("signer %q on request %q: %w", signerID, requestID, ErrNotFound)
	}

	// Work on a copy so the stored aggregate is replaced only once complete
	next := current.Clone()
	now := s.now()
	signer := &next.Signers[idx]
	actor := signer.Name
	signer.Status = status
	if status == model.SignerSigned {
		signedAt := now
		signer.SignedAt = &signedAt
	} else {
		signer.SignedAt = nil
	}
	next.ActivityLog = append(next.ActivityLog, model.ActivityLogEntry{
		ID:          s.newID(),
		Timestamp:   now,
		Description: description,
		Actor:       actor,
	})
	next.Status = model.DeriveStatus(next.Signers)

	s.requests[requestID] = next
	snapshot := next.Clone()
	s.mu.Unlock()

	s.publish(Event{
		Type:         EventSignerUpdated,
		Request:      snapshot,
		SignerID:     signerID,
		SignerStatus: status,
	})
	return snapshot.Clone(), nil
}
