package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MangousteEnFeu/TaxProjectV2/dto"
	"github.com/MangousteEnFeu/TaxProjectV2/repository"
	"github.com/MangousteEnFeu/TaxProjectV2/service"
)

// allowedExtensions mirrors the upload admission policy: text PDFs,
// spreadsheets and scanned images only.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".xlsx": true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

type DeclarationHandler struct {
	repo        *repository.DeclarationRepository
	extraction  *service.ExtractionService
	tax         *service.TaxCalculator
	maxFileSize int64
}

func NewDeclarationHandler(
	repo *repository.DeclarationRepository,
	extraction *service.ExtractionService,
	tax *service.TaxCalculator,
	maxFileSize int64,
) *DeclarationHandler {
	return &DeclarationHandler{
		repo:        repo,
		extraction:  extraction,
		tax:         tax,
		maxFileSize: maxFileSize,
	}
}

type createDeclarationRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateDeclaration handles POST /declarations
func (h *DeclarationHandler) CreateDeclaration(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req createDeclarationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	decl, err := h.repo.Create(c.Request.Context(), userID, req.Title)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to create declaration", err)
		return
	}

	c.JSON(http.StatusCreated, decl)
}

// ListDeclarations handles GET /declarations
func (h *DeclarationHandler) ListDeclarations(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	decls, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to list declarations", err)
		return
	}
	if decls == nil {
		decls = []*dto.Declaration{}
	}

	c.JSON(http.StatusOK, decls)
}

// GetDeclaration handles GET /declarations/:id
func (h *DeclarationHandler) GetDeclaration(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	decl, err := h.repo.GetByID(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, repository.ErrDeclarationNotFound) {
		h.sendError(c, http.StatusNotFound, "Declaration not found", nil)
		return
	}
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to load declaration", err)
		return
	}

	c.JSON(http.StatusOK, decl)
}

// DeleteDeclaration handles DELETE /declarations/:id
func (h *DeclarationHandler) DeleteDeclaration(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	err := h.repo.Delete(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, repository.ErrDeclarationNotFound) {
		h.sendError(c, http.StatusNotFound, "Declaration not found", nil)
		return
	}
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to delete declaration", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ExtractDocuments handles POST /declarations/:id/extract. It runs the batch
// extraction pipeline over the uploaded documents, aggregates the outcomes,
// computes the tax estimate and persists both on the declaration.
func (h *DeclarationHandler) ExtractDocuments(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	declarationID := c.Param("id")

	// Ownership check before doing any heavy work.
	if _, err := h.repo.GetByID(c.Request.Context(), declarationID, userID); err != nil {
		if errors.Is(err, repository.ErrDeclarationNotFound) {
			h.sendError(c, http.StatusNotFound, "Declaration not found", nil)
			return
		}
		h.sendError(c, http.StatusInternalServerError, "Failed to load declaration", err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}

	request := &dto.ExtractionRequest{
		Files:    form.File["files[]"],
		Metadata: c.PostForm("metadata"),
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	var metadata dto.UploadMetadata
	if err := json.Unmarshal([]byte(request.Metadata), &metadata); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid metadata JSON", err)
		return
	}

	docs, err := h.buildDocuments(request.Files, metadata)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	log.Printf("Processing %d documents for declaration %s", len(docs), declarationID)

	outcomes, err := h.extraction.Run(c.Request.Context(), docs)
	if err != nil {
		h.sendError(c, http.StatusInternalServerError, "Extraction aborted", err)
		return
	}

	profile := service.Aggregate(outcomes, h.identity(c))
	taxResult := h.tax.ComputeTax(profile)

	if err := h.repo.SaveResults(c.Request.Context(), declarationID, userID, profile, taxResult); err != nil {
		h.sendError(c, http.StatusInternalServerError, "Failed to save results", err)
		return
	}

	c.JSON(http.StatusOK, dto.ExtractionResponse{
		Profile:     profile,
		Tax:         taxResult,
		Partial:     profile.PartialFailure(),
		ProcessedAt: time.Now().Format(time.RFC3339),
	})
}

// buildDocuments pairs uploaded files with their declared kinds, in metadata
// order, and enforces the admission policy (extension and size).
func (h *DeclarationHandler) buildDocuments(files []*multipart.FileHeader, metadata dto.UploadMetadata) ([]dto.RawDocument, error) {
	fileMap := make(map[string]*multipart.FileHeader, len(files))
	for _, file := range files {
		fileMap[file.Filename] = file
	}

	docs := make([]dto.RawDocument, 0, len(metadata.Documents))
	for _, docMeta := range metadata.Documents {
		fileHeader, ok := fileMap[docMeta.Filename]
		if !ok {
			log.Printf("Warning: file %s mentioned in metadata not found in upload", docMeta.Filename)
			continue
		}

		ext := strings.ToLower(filepath.Ext(docMeta.Filename))
		if !allowedExtensions[ext] {
			return nil, errors.New("unsupported file type: " + docMeta.Filename)
		}
		if fileHeader.Size > h.maxFileSize {
			return nil, errors.New("file too large: " + docMeta.Filename)
		}

		f, err := fileHeader.Open()
		if err != nil {
			return nil, errors.New("failed to open " + docMeta.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.New("failed to read " + docMeta.Filename)
		}

		docs = append(docs, dto.RawDocument{
			Name: docMeta.Filename,
			Kind: docMeta.Kind,
			Data: data,
		})
	}

	if len(docs) == 0 {
		return nil, dto.ErrNoDocuments
	}
	return docs, nil
}

// requireUser reads the opaque user identifier set by the upstream auth
// layer. The service itself performs no authentication.
func (h *DeclarationHandler) requireUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		h.sendError(c, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return "", false
	}
	return userID, true
}

func (h *DeclarationHandler) identity(c *gin.Context) dto.Identity {
	identity := dto.Identity{
		FirstName: c.GetHeader("X-First-Name"),
		LastName:  c.GetHeader("X-Last-Name"),
	}
	if identity.FirstName == "" {
		identity.FirstName = "Déclarant"
	}
	if identity.LastName == "" {
		identity.LastName = "Vaudois"
	}
	return identity
}

// sendError sends a structured error response
func (h *DeclarationHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "DECLARATION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
