package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/drumil32/thumbnail-maker-backend/internal/config"
	"github.com/drumil32/thumbnail-maker-backend/internal/conversation"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
	"github.com/drumil32/thumbnail-maker-backend/internal/pkg/logger"
	"github.com/drumil32/thumbnail-maker-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ChatUsecase
	uploadCfg config.UploadConfig
}

func NewHandler(usecase ChatUsecase, uploadCfg config.UploadConfig) *Handler {
	return &Handler{
		usecase:   usecase,
		uploadCfg: uploadCfg,
	}
}

// StartSession handles POST /chat-session - start a new conversation
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "StartSession")

	snapshot, err := h.usecase.StartSession(ctx)
	if err != nil {
		ctxzap.Error(ctx, "failed to start session", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	response.Created(w, snapshot)
}

// GetSession handles GET /chat-session/{id} - current snapshot
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "GetSession")

	snapshot, err := h.usecase.GetSession(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// SelectOption handles POST /chat-session/{id}/option
func (h *Handler) SelectOption(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "SelectOption")

	var req entity.OptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, err := h.usecase.SelectOption(ctx, sessionID, req.OptionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// UploadImages handles POST /chat-session/{id}/images. The multipart form
// mirrors the generation request: files under bgImg / majorImg / imgIcons,
// descriptions under bgImgDescription / majorImgDescription /
// imgDescriptions (JSON array, one entry per icon).
func (h *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "UploadImages")

	if err := r.ParseMultipartForm(h.uploadCfg.MaxFormSize); err != nil {
		ctxzap.Error(ctx, "failed to parse multipart form", zap.Error(err))
		response.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var snapshot *entity.SessionSnapshot

	for _, slot := range []string{conversation.SlotBackground, conversation.SlotMajor, conversation.SlotIcons} {
		items, present, err := h.readSlot(r, slot)
		if err != nil {
			ctxzap.Error(ctx, "failed to read image slot", zap.String("slot", slot), zap.Error(err))
			response.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid %s upload", slot))
			return
		}
		if !present {
			continue
		}

		snapshot, err = h.usecase.UpdateImages(ctx, sessionID, slot, items)
		if err != nil {
			h.handleUsecaseError(ctx, w, err)
			return
		}
	}

	if snapshot == nil {
		var err error
		snapshot, err = h.usecase.GetSession(ctx, sessionID)
		if err != nil {
			h.handleUsecaseError(ctx, w, err)
			return
		}
	}

	response.Success(w, snapshot)
}

// ImagesDone handles POST /chat-session/{id}/images/done
func (h *Handler) ImagesDone(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "ImagesDone")

	snapshot, err := h.usecase.ImagesDone(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// UpdateStyle handles POST /chat-session/{id}/style
func (h *Handler) UpdateStyle(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "UpdateStyle")

	var req entity.StyleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, err := h.usecase.UpdateStyle(ctx, sessionID, req.ThemeColor, req.Category)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// StyleDone handles POST /chat-session/{id}/style/done
func (h *Handler) StyleDone(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "StyleDone")

	snapshot, err := h.usecase.StyleDone(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// Confirm handles POST /chat-session/{id}/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "Confirm")

	snapshot, err := h.usecase.Confirm(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// RequestEdit handles POST /chat-session/{id}/edit
func (h *Handler) RequestEdit(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "RequestEdit")

	snapshot, err := h.usecase.RequestEdit(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// SubmitDescription handles POST /chat-session/{id}/description. When the
// submission passes local validation the generation call runs in the
// background and the handler answers 202; the settling message lands in
// the timeline once the call completes.
func (h *Handler) SubmitDescription(w http.ResponseWriter, r *http.Request) {
	h.submitText(w, r, "SubmitDescription", h.usecase.SubmitDescription)
}

// OpenFollowUp handles POST /chat-session/{id}/follow-up/open
func (h *Handler) OpenFollowUp(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "OpenFollowUp")

	snapshot, err := h.usecase.OpenFollowUp(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// SubmitFollowUp handles POST /chat-session/{id}/follow-up
func (h *Handler) SubmitFollowUp(w http.ResponseWriter, r *http.Request) {
	h.submitText(w, r, "SubmitFollowUp", h.usecase.SubmitFollowUp)
}

type submitFunc func(ctx context.Context, id, text string) (*entity.SessionSnapshot, []conversation.Effect, error)

func (h *Handler) submitText(w http.ResponseWriter, r *http.Request, action string, submit submitFunc) {
	ctx, sessionID := h.sessionContext(r, action)

	var req entity.TextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snapshot, effects, err := submit(ctx, sessionID, req.Text)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if len(effects) == 0 {
		// Rejected locally; the corrective message is already in the
		// timeline and no network call happens.
		response.Success(w, snapshot)
		return
	}

	go func() {
		bgCtx := logger.AddFields(ctxzap.ToContext(context.Background(), ctxzap.Extract(ctx)),
			zap.String("session_id", sessionID),
			zap.String("action", action+"-async"),
		)
		h.usecase.ExecuteEffects(bgCtx, sessionID, effects)
	}()

	response.JSON(w, http.StatusAccepted, snapshot)
}

// Download handles GET /chat-session/{id}/download
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "Download")

	data, contentType, err := h.usecase.DownloadResult(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="thumbnail.png"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// Reset handles POST /chat-session/{id}/reset - start over
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "Reset")

	snapshot, err := h.usecase.Reset(ctx, sessionID)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, snapshot)
}

// EndSession handles DELETE /chat-session/{id} - discard the conversation
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx, sessionID := h.sessionContext(r, "EndSession")

	if err := h.usecase.EndSession(ctx, sessionID); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) sessionContext(r *http.Request, action string) (context.Context, string) {
	sessionID := chi.URLParam(r, "id")
	ctx := logger.WithSession(logger.WithAction(r.Context(), action), sessionID)
	return ctx, sessionID
}

// readSlot collects the files and descriptions of one image slot from the
// parsed multipart form
func (h *Handler) readSlot(r *http.Request, slot string) ([]entity.ImageItem, bool, error) {
	files := r.MultipartForm.File[slot]
	if len(files) == 0 {
		return nil, false, nil
	}

	descriptions, err := slotDescriptions(r, slot, len(files))
	if err != nil {
		return nil, false, err
	}

	items := make([]entity.ImageItem, 0, len(files))
	for i, fh := range files {
		data, err := readFileHeader(fh)
		if err != nil {
			return nil, false, err
		}
		items = append(items, entity.ImageItem{
			Data:        data,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Description: descriptions[i],
		})
	}

	return items, true, nil
}

func slotDescriptions(r *http.Request, slot string, count int) ([]string, error) {
	descriptions := make([]string, count)

	switch slot {
	case conversation.SlotBackground:
		descriptions[0] = r.FormValue("bgImgDescription")
	case conversation.SlotMajor:
		descriptions[0] = r.FormValue("majorImgDescription")
	case conversation.SlotIcons:
		raw := r.FormValue("imgDescriptions")
		if raw == "" {
			break
		}
		var parsed []string
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			return nil, fmt.Errorf("decode imgDescriptions: %w", err)
		}
		copy(descriptions, parsed)
	}

	return descriptions, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrSessionNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, entity.ErrUnknownOption),
		errors.Is(err, entity.ErrUnknownImageSlot):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrGenerationPending),
		errors.Is(err, entity.ErrInvalidEvent),
		errors.Is(err, entity.ErrInputNotAccepted),
		errors.Is(err, entity.ErrNoGeneratedResult),
		errors.Is(err, entity.ErrFollowUpNotOpened):
		response.Error(w, http.StatusConflict, err.Error())
	default:
		ctxzap.Error(ctx, "unexpected usecase error", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "internal error")
	}
}
