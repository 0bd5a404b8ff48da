package service

import (
	"fmt"

	"github.com/V10L1/modulo-assinatura/model"
)

type demoSigner struct {
	SignerInput
	sign bool
}

type demoRequest struct {
	document string
	message  string
	signers  []demoSigner
}

var demoRequests = []demoRequest{
	{
		document: "Q3 Financial Report.pdf",
		message:  "Please sign off on the Q3 financial report.",
		signers: []demoSigner{
			{SignerInput{Name: "Charlie Brown", Email: "charlie@example.com"}, true},
		},
	},
	{
		document: "Project Alpha Agreement.pdf",
		message:  "Hi team, please review and sign the Project Alpha agreement by EOD Friday.",
		signers: []demoSigner{
			{SignerInput{Name: "Alice Johnson", Email: "alice@example.com"}, true},
			{SignerInput{Name: "Bob Williams", Email: "bob@example.com"}, false},
		},
	},
}

// SeedDemo fills the store with the demo requests shown on a fresh dashboard.
// They go through Create and UpdateSignerStatus like any other request.
func SeedDemo(store *RequestStore) error {
	for _, d := range demoRequests {
		inputs := make([]SignerInput, len(d.signers))
		for i, s := range d.signers {
			inputs[i] = s.SignerInput
		}

		req, err := store.Create(CreateRequestInput{
			DocumentName: d.document,
			DocumentURL:  "about:blank",
			Message:      d.message,
			Signers:      inputs,
		})
		if err != nil {
			return fmt.Errorf("seed %s: %w", d.document, err)
		}

		for i, s := range d.signers {
			if !s.sign {
				continue
			}
			if _, err := store.UpdateSignerStatus(req.ID, req.Signers[i].ID, model.SignerSigned); err != nil {
				return fmt.Errorf("seed %s: %w", d.document, err)
			}
		}
	}
	return nil
}
