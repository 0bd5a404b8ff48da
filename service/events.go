package service

import (
	"log/slog"

	"github.com/V10L1/modulo-assinatura/model"
)

// EventType identifies what changed in the store
type EventType string

const (
	EventRequestCreated EventType = "request_created"
	EventSignerUpdated  EventType = "signer_updated"
)

// Event is delivered to listeners after a mutation has committed
type Event struct {
	Type         EventType
	Request      *model.SignatureRequest
	SignerID     string             // set for EventSignerUpdated
	SignerStatus model.SignerStatus // set for EventSignerUpdated
}

// Listener receives store events. It runs on the mutating goroutine after
// the store lock is released and must not block for long.
type Listener func(Event)

// Subscribe registers fn for every future event and returns a function removing it
func (s *RequestStore) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *RequestStore) publish(ev Event) {
	s.listenersMu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		e := ev
		e.Request = ev.Request.Clone()
		fn(e)
	}
}

// NewActivityNotifier returns a listener that logs request activity. It takes
// the place of sender and signer notifications, which are not delivered.
func NewActivityNotifier(log *slog.Logger) Listener {
	if log == nil {
		log = slog.Default()
	}
	return func(ev Event) {
		req := ev.Request
		switch ev.Type {
		case EventRequestCreated:
			log.Info("signature request created",
				"signature_request_id", req.ID,
				"document", req.DocumentName,
				"signers", len(req.Signers),
			)
		case EventSignerUpdated:
			signer, _ := req.Signer(ev.SignerID)
			log.Info("signer responded",
				"signature_request_id", req.ID,
				"signer_id", ev.SignerID,
				"signer", signer.Name,
				"status", ev.SignerStatus,
			)
			switch req.Status {
			case model.RequestCompleted:
				log.Info("signature request completed", "signature_request_id", req.ID)
			case model.RequestDeclined:
				log.Info("signature request declined", "signature_request_id", req.ID, "signer_id", ev.SignerID)
			}
		}
	}
}
