package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/drumil32/thumbnail-maker-backend/internal/config"
	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
	pkghttp "github.com/drumil32/thumbnail-maker-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// serviceResponse is the wire shape of the generation service reply
type serviceResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

// followUpRequest is the wire shape of a revision request
type followUpRequest struct {
	Instruction string `json:"instruction"`
	ImageURL    string `json:"imageUrl"`
}

type Connector struct {
	config    config.GenerationConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.GenerationConnectorConfig, logger *zap.Logger) *Connector {
	connCfg := &pkghttp.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	return &Connector{
		config: cfg,
		connector: pkghttp.NewConnector(
			connCfg,
			pkghttp.WithRequestTimeout(cfg.RequestTimeout),
			pkghttp.WithConnClientTimeout(cfg.ConnTimeout),
			pkghttp.WithClientKeepAlive(cfg.KeepAlive),
			pkghttp.WithIdleConnTimeout(cfg.IdleConnTimeout),
			pkghttp.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
			pkghttp.WithRequestLogging(),
			pkghttp.WithAuthToken(cfg.Token),
		),
		logger: logger,
	}
}

// Generate submits the assembled field set as a multipart request. Network
// and non-2xx failures are folded into the result, never returned as an
// error: the state machine turns them into a user-visible message.
func (c *Connector) Generate(ctx context.Context, fields *entity.FieldSet) *entity.GenerationResult {
	ctxzap.Info(ctx, "requesting thumbnail generation",
		zap.Int("description_length", len(fields.FinalDescription)),
		zap.Bool("has_images", fields.HasImages()),
	)

	var resp serviceResponse
	err := c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.GenerateEndpoint,
		func(w *multipart.Writer) error {
			return writeGenerationForm(w, fields)
		}, &resp)
	if err != nil {
		ctxzap.Error(ctx, "generation request failed", zap.Error(err))
		return failureResult(err)
	}

	if !resp.Success {
		ctxzap.Warn(ctx, "generation service reported failure", zap.String("message", resp.Message))
		return &entity.GenerationResult{Success: false, Error: resp.Message}
	}

	ctxzap.Info(ctx, "thumbnail generated", zap.String("url", resp.URL))

	return &entity.GenerationResult{Success: true, URL: resp.URL, Message: resp.Message}
}

// FollowUp asks the service to revise a previously generated image
func (c *Connector) FollowUp(ctx context.Context, instruction, currentURL string) *entity.GenerationResult {
	ctxzap.Info(ctx, "requesting thumbnail revision", zap.String("current_url", currentURL))

	req := &followUpRequest{
		Instruction: instruction,
		ImageURL:    currentURL,
	}

	var resp serviceResponse
	err := c.connector.DoRequest(ctx, http.MethodPost, c.config.FollowUpEndpoint, req, &resp)
	if err != nil {
		ctxzap.Error(ctx, "follow-up request failed", zap.Error(err))
		return failureResult(err)
	}

	if !resp.Success {
		ctxzap.Warn(ctx, "follow-up service reported failure", zap.String("message", resp.Message))
		return &entity.GenerationResult{Success: false, Error: resp.Message}
	}

	ctxzap.Info(ctx, "thumbnail revised", zap.String("url", resp.URL))

	return &entity.GenerationResult{Success: true, URL: resp.URL, Message: resp.Message}
}

// Download fetches the generated image bytes so the backend can stream
// them to the user. Transient fetch failures are retried.
func (c *Connector) Download(ctx context.Context, url string) ([]byte, string, error) {
	var (
		data        []byte
		contentType string
	)

	err := retry.Do(func() error {
		var fetchErr error
		data, contentType, fetchErr = c.connector.DoRawGet(ctx, url)
		return fetchErr
	}, append(c.config.DownloadRetry.ToRetryOptions(), retry.Context(ctx))...)
	if err != nil {
		return nil, "", fmt.Errorf("download generated image: %w", err)
	}

	return data, contentType, nil
}

// writeGenerationForm lays out the multipart form: required text fields
// always, files and their descriptions only when present
func writeGenerationForm(w *multipart.Writer, fields *entity.FieldSet) error {
	if err := w.WriteField("finalDescription", fields.FinalDescription); err != nil {
		return err
	}
	if err := w.WriteField("themeColor", fields.ThemeColor); err != nil {
		return err
	}
	if err := w.WriteField("category", fields.Category); err != nil {
		return err
	}

	if err := writeImageField(w, "bgImg", "bgImgDescription", fields.BgImg); err != nil {
		return err
	}
	if err := writeImageField(w, "majorImg", "majorImgDescription", fields.MajorImg); err != nil {
		return err
	}

	icons := make([]entity.ImageItem, 0, len(fields.ImgIcons))
	for _, icon := range fields.ImgIcons {
		if icon.Present() {
			icons = append(icons, icon)
		}
	}
	if len(icons) == 0 {
		return nil
	}

	descriptions := make([]string, 0, len(icons))
	for _, icon := range icons {
		part, err := w.CreateFormFile("imgIcons", icon.Filename)
		if err != nil {
			return err
		}
		if _, err := part.Write(icon.Data); err != nil {
			return err
		}
		descriptions = append(descriptions, icon.Description)
	}

	encoded, err := json.Marshal(descriptions)
	if err != nil {
		return fmt.Errorf("encode icon descriptions: %w", err)
	}

	return w.WriteField("imgDescriptions", string(encoded))
}

func writeImageField(w *multipart.Writer, fileField, descField string, item *entity.ImageItem) error {
	if item == nil || !item.Present() {
		return nil
	}

	part, err := w.CreateFormFile(fileField, item.Filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(item.Data); err != nil {
		return err
	}

	if item.Description != "" {
		return w.WriteField(descField, item.Description)
	}
	return nil
}

func failureResult(err error) *entity.GenerationResult {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return &entity.GenerationResult{
			Success: false,
			Error:   fmt.Sprintf("service returned HTTP %d", httpErr.StatusCode),
		}
	}

	var netErr *pkghttp.NetworkError
	if errors.As(err, &netErr) {
		return &entity.GenerationResult{
			Success: false,
			Error:   "could not reach the generation service",
		}
	}

	return &entity.GenerationResult{Success: false, Error: err.Error()}
}
