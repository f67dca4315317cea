package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/d9705996/hrportal/internal/api/request"
	"github.com/d9705996/hrportal/internal/api/respond"
	"github.com/d9705996/hrportal/internal/apierr"
	"github.com/d9705996/hrportal/internal/auth"
	"github.com/d9705996/hrportal/internal/model"
	"github.com/d9705996/hrportal/internal/storage"
	"gorm.io/gorm"
)

// FileHandler handles /api/files/* routes. Blobs live in the storage package;
// this handler owns the metadata rows and the access rules.
type FileHandler struct {
	db    *gorm.DB
	store *storage.Store
}

// NewFileHandler creates a FileHandler.
func NewFileHandler(db *gorm.DB, store *storage.Store) *FileHandler {
	return &FileHandler{db: db, store: store}
}

func fileJSON(f *model.File) map[string]any {
	out := map[string]any{
		"id":                f.ID,
		"filename":          f.Filename,
		"original_filename": f.OriginalFilename,
		"content_type":      f.ContentType,
		"size":              f.Size,
		"scanner_status":    f.ScannerStatus,
		"entity_type":       f.EntityType,
		"entity_id":         f.EntityID,
		"uploaded_by":       f.UploadedBy,
		"created_at":        f.CreatedAt.UTC().Format(time.RFC3339),
	}
	if f.Uploader != nil {
		out["uploader"] = userBrief(f.Uploader)
	}
	return out
}

// Upload handles POST /api/files/upload (multipart form, field "file").
// The scanner stub marks every stored file clean; a real scanner would flip
// ScannerStatus asynchronously.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxSize()+4096)
	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, apierr.BadRequest("Missing 'file' form field"))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !storage.AllowedType(contentType) {
		respond.Error(w, apierr.BadRequest("File type not allowed"))
		return
	}

	name, size, err := h.store.Save(file, contentType)
	if err != nil {
		respond.Error(w, apierr.BadRequest(err.Error()))
		return
	}

	rec := model.File{
		Filename:         name,
		OriginalFilename: header.Filename,
		StoragePath:      name,
		ContentType:      contentType,
		Size:             size,
		ScannerStatus:    "clean",
		UploadedBy:       id.UserID,
	}
	if err := h.db.WithContext(r.Context()).Create(&rec).Error; err != nil {
		_ = h.store.Remove(name)
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusCreated, fileJSON(&rec))
}

// MyFiles handles GET /api/files/my-files.
func (h *FileHandler) MyFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	skip, limit := respond.Pagination(r)

	q := h.db.WithContext(r.Context()).Model(&model.File{}).Where("uploaded_by = ?", id.UserID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		respond.Error(w, err)
		return
	}
	var files []model.File
	if err := q.Order("created_at DESC").Offset(skip).Limit(limit).Find(&files).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(files))
	for i := range files {
		out[i] = fileJSON(&files[i])
	}
	respond.JSON(w, http.StatusOK, listEnvelope("files", out, total, skip, limit))
}

// Download handles GET /api/files/{id}: the uploader or HR+.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	rec, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if rec.UploadedBy != id.UserID && !auth.HasRole(id.Role, model.RoleHR) {
		respond.Error(w, apierr.Forbidden("You do not have access to this file"))
		return
	}

	rc, err := h.store.Open(rec.StoragePath)
	if err != nil {
		respond.Error(w, apierr.NotFound("File"))
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(rec.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.OriginalFilename+`"`)
	_, _ = io.Copy(w, rc)
}

// Delete handles DELETE /api/files/{id}: the uploader or ADMIN+.
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	rec, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if rec.UploadedBy != id.UserID && !auth.HasRole(id.Role, model.RoleAdmin) {
		respond.Error(w, apierr.Forbidden("Only the uploader or an admin can delete a file"))
		return
	}

	if err := h.db.WithContext(r.Context()).Delete(rec).Error; err != nil {
		respond.Error(w, err)
		return
	}
	if err := h.store.Remove(rec.StoragePath); err != nil {
		respond.Error(w, err)
		return
	}
	respond.Message(w, http.StatusOK, "File deleted")
}

// Attach handles POST /api/files/{id}/attach: the uploader binds an
// unattached, clean file to a feedback item or announcement.
func (h *FileHandler) Attach(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	rec, err := h.load(r)
	if err != nil {
		respond.Error(w, err)
		return
	}
	if rec.UploadedBy != id.UserID {
		respond.Error(w, apierr.Forbidden("Only the uploader can attach a file"))
		return
	}
	if rec.EntityType != nil {
		respond.Error(w, apierr.Conflict("File is already attached"))
		return
	}
	if rec.ScannerStatus != "clean" {
		respond.Error(w, apierr.Forbidden("File has not passed scanning"))
		return
	}

	var req request.AttachFile
	if err := request.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	ctx := r.Context()
	if err := h.entityExists(ctx, req.EntityType, req.EntityID); err != nil {
		respond.Error(w, err)
		return
	}

	if err := h.db.WithContext(ctx).Model(rec).
		Updates(map[string]any{"entity_type": req.EntityType, "entity_id": req.EntityID}).Error; err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, fileJSON(rec))
}

// ByEntity handles GET /api/files/by-entity/{type}/{id}.
func (h *FileHandler) ByEntity(w http.ResponseWriter, r *http.Request) {
	entityType := r.PathValue("type")
	entityID, err := respond.PathID(r, "id")
	if err != nil {
		respond.Error(w, err)
		return
	}

	var files []model.File
	if err := h.db.WithContext(r.Context()).Preload("Uploader").
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at").Find(&files).Error; err != nil {
		respond.Error(w, err)
		return
	}

	out := make([]map[string]any, len(files))
	for i := range files {
		out[i] = fileJSON(&files[i])
	}
	respond.JSON(w, http.StatusOK, map[string]any{"files": out})
}

func (h *FileHandler) load(r *http.Request) (*model.File, error) {
	fileID, err := respond.PathID(r, "id")
	if err != nil {
		return nil, err
	}
	var rec model.File
	err = h.db.WithContext(r.Context()).First(&rec, fileID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("File")
		}
		return nil, err
	}
	return &rec, nil
}

func (h *FileHandler) entityExists(ctx context.Context, entityType string, entityID uint) error {
	var count int64
	var err error
	switch entityType {
	case "feedback":
		err = h.db.WithContext(ctx).Model(&model.Feedback{}).Where("id = ?", entityID).Count(&count).Error
	case "announcement":
		err = h.db.WithContext(ctx).Model(&model.Announcement{}).Where("id = ?", entityID).Count(&count).Error
	default:
		return apierr.BadRequest("Unknown entity type")
	}
	if err != nil {
		return err
	}
	if count == 0 {
		return apierr.NotFound("Target entity")
	}
	return nil
}
