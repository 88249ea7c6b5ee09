package server

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/apphelix/engagement-tracker/internal/entity"
)

// uploadDocument receives a multipart file for an engagement, runs it through
// the pipeline, and persists the document with any extracted text and sentiment.
// A rejected file is not kept on disk.
func (s *Server) uploadDocument(c *gin.Context) {
	engagementID, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	if _, err := s.store.GetEngagement(c.Request.Context(), engagementID); err != nil {
		s.respondError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	docID := uuid.New()
	filename := docID.String() + filepath.Ext(header.Filename)
	destPath := filepath.Join(s.uploadDir, filename)
	if err := c.SaveUploadedFile(header, destPath); err != nil {
		s.logger.Error("server.upload.save_failed", "path", destPath, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save file failed"})
		return
	}

	result := s.processor.ProcessFile(c.Request.Context(), destPath)
	if !result.Validation.Valid {
		_ = os.Remove(destPath)
		s.respondError(c, result.Validation.Err)
		return
	}

	fileType := c.DefaultPostForm("file_type", "other")
	doc := entity.Document{
		ID:           docID,
		EngagementID: engagementID,
		Filename:     filename,
		OriginalName: filepath.Base(header.Filename),
		FileType:     fileType,
		MimeClass:    result.Validation.Mime,
		SizeBytes:    result.Validation.SizeBytes,
		FilePath:     destPath,
		UploadedBy:   c.PostForm("uploaded_by"),
		UploadedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateDocument(c.Request.Context(), &doc); err != nil {
		_ = os.Remove(destPath)
		s.respondError(c, err)
		return
	}

	if result.Extraction != nil {
		sentiment := ""
		if result.Sentiment != nil {
			sentiment = result.Sentiment.Classification
		}
		if err := s.store.MarkDocumentProcessed(c.Request.Context(), doc.ID, result.Extraction.Text, sentiment); err != nil {
			s.respondError(c, err)
			return
		}
		now := time.Now().UTC()
		doc.ProcessedAt = &now
		doc.TextContent = result.Extraction.Text
		doc.Sentiment = sentiment
	}

	c.JSON(http.StatusCreated, gin.H{"document": doc, "result": result})
}

// processDocument re-runs the pipeline on an already-stored file.
func (s *Server) processDocument(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	doc, err := s.store.GetDocument(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result := s.processor.ProcessFile(c.Request.Context(), doc.FilePath)
	if !result.Validation.Valid {
		s.respondError(c, result.Validation.Err)
		return
	}
	if result.ExtractionErr != nil {
		s.respondError(c, result.ExtractionErr)
		return
	}

	sentiment := ""
	if result.Sentiment != nil {
		sentiment = result.Sentiment.Classification
	}
	if err := s.store.MarkDocumentProcessed(c.Request.Context(), doc.ID, result.Extraction.Text, sentiment); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"document_id": doc.ID, "result": result})
}

func (s *Server) getDocument(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	doc, err := s.store.GetDocument(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

const defaultListLimit = 100

func (s *Server) listDocuments(c *gin.Context) {
	docs, err := s.store.ListDocuments(c.Request.Context(), defaultListLimit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

func (s *Server) listEngagementDocuments(c *gin.Context) {
	engagementID, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	docs, err := s.store.FindDocumentsForEngagement(c.Request.Context(), engagementID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs})
}

// deleteDocument removes the row and best-effort removes the file on disk.
func (s *Server) deleteDocument(c *gin.Context) {
	id, ok := s.pathUUID(c, "id")
	if !ok {
		return
	}
	doc, err := s.store.GetDocument(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if err := s.store.DeleteDocument(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	if err := os.Remove(doc.FilePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("server.document.delete_file_failed", "path", doc.FilePath, "error", err)
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
