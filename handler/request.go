package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/V10L1/modulo-assinatura/model"
	"github.com/V10L1/modulo-assinatura/pkg/logger"
	"github.com/V10L1/modulo-assinatura/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// multipart overhead allowed on top of the document itself
const formOverhead = 1 << 20

type RequestHandler struct {
	store          *service.RequestStore
	documents      service.DocumentSource
	maxUploadBytes int64
}

func NewRequestHandler(store *service.RequestStore, documents service.DocumentSource, maxUploadBytes int64) *RequestHandler {
	return &RequestHandler{
		store:          store,
		documents:      documents,
		maxUploadBytes: maxUploadBytes,
	}
}

// RequestSummary is the dashboard card view of a request
type RequestSummary struct {
	ID           string              `json:"id"`
	DocumentName string              `json:"document_name"`
	Status       model.RequestStatus `json:"status"`
	CreatedAt    string              `json:"created_at"`
	Signed       int                 `json:"signed"`
	Total        int                 `json:"total"`
	Signers      []SignerSummary     `json:"signers"`
}

type SignerSummary struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Status model.SignerStatus `json:"status"`
}

func summarize(req *model.SignatureRequest) RequestSummary {
	signed, total := req.Progress()
	s := RequestSummary{
		ID:           req.ID,
		DocumentName: req.DocumentName,
		Status:       req.Status,
		CreatedAt:    req.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		Signed:       signed,
		Total:        total,
		Signers:      make([]SignerSummary, len(req.Signers)),
	}
	for i, signer := range req.Signers {
		s.Signers[i] = SignerSummary{ID: signer.ID, Name: signer.Name, Status: signer.Status}
	}
	return s
}

// Create handles a new signature request: a multipart form with the
// document in "file", a JSON array of {name, email} in "signers" and an
// optional "message"
func (h *RequestHandler) Create(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+formOverhead)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, service.ErrDocumentTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided", "field": "file"})
		return
	}
	defer file.Close()

	var signers []service.SignerInput
	if raw := c.PostForm("signers"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &signers); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "signers must be a JSON array of {name, email}", "field": "signers"})
			return
		}
	}

	input := service.CreateRequestInput{
		DocumentName: header.Filename,
		Message:      strings.TrimSpace(c.PostForm("message")),
		Signers:      signers,
	}
	// Reject bad input before the document leaves the process
	if err := input.Validate(); err != nil {
		respondError(c, err)
		return
	}

	// Sniff the first bytes, then rewind for the upload
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file", "field": "file"})
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file", "field": "file"})
		return
	}
	contentType := service.DetectContentType(header.Filename, header.Header.Get("Content-Type"), head[:n])

	ctx := c.Request.Context()
	ref, err := h.documents.Store(ctx, uuid.NewString(), header.Filename, contentType, file, header.Size)
	if err != nil {
		if errors.Is(err, service.ErrDocumentTooLarge) {
			respondError(c, err)
			return
		}
		logger.Error(ctx, "failed to store document", "document", header.Filename, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store document"})
		return
	}
	input.DocumentURL = ref

	req, err := h.store.Create(input)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info(logger.WithSignatureRequest(ctx, req.ID), "signature request sent",
		"document", req.DocumentName,
		"content_type", contentType,
		"signers", len(req.Signers),
	)
	c.JSON(http.StatusCreated, req)
}

// List returns every request, most recent first
func (h *RequestHandler) List(c *gin.Context) {
	requests := h.store.List()

	result := make([]RequestSummary, len(requests))
	for i, req := range requests {
		result[i] = summarize(req)
	}

	c.JSON(http.StatusOK, gin.H{"requests": result})
}

// Get returns a single request with its signers and activity log
func (h *RequestHandler) Get(c *gin.Context) {
	req, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, req)
}

// SigningView returns what a signer sees before responding
func (h *RequestHandler) SigningView(c *gin.Context) {
	req, err := h.store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	signer, ok := req.Signer(c.Param("signerId"))
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request": gin.H{
			"id":            req.ID,
			"document_name": req.DocumentName,
			"document_url":  req.DocumentURL,
			"message":       req.Message,
			"status":        req.Status,
		},
		"signer":    signer,
		"responded": signer.Status.Terminal(),
	})
}

// Sign records the signer's signature
func (h *RequestHandler) Sign(c *gin.Context) {
	h.respond(c, model.SignerSigned)
}

// Decline records the signer's refusal
func (h *RequestHandler) Decline(c *gin.Context) {
	h.respond(c, model.SignerDeclined)
}

func (h *RequestHandler) respond(c *gin.Context, status model.SignerStatus) {
	requestID, signerID := c.Param("id"), c.Param("signerId")
	ctx := logger.WithSigner(logger.WithSignatureRequest(c.Request.Context(), requestID), signerID)

	req, err := h.store.UpdateSignerStatus(requestID, signerID, status)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Info(ctx, "signer status updated", "status", status, "request_status", req.Status)
	c.JSON(http.StatusOK, req)
}
