package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/drumil32/thumbnail-maker-backend/internal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockConnector returns canned successful results without touching the
// network. Enabled with ENABLE_MOCKS for local development.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{logger: logger}
}

func (c *MockConnector) Generate(ctx context.Context, fields *entity.FieldSet) *entity.GenerationResult {
	c.logger.Info("mock generate",
		zap.String("category", fields.Category),
		zap.String("theme_color", fields.ThemeColor),
	)

	time.Sleep(300 * time.Millisecond)

	return &entity.GenerationResult{
		Success: true,
		URL:     fmt.Sprintf("https://mock.thumbnails.local/%s.png", uuid.New().String()),
		Message: "Mock thumbnail generated",
	}
}

func (c *MockConnector) FollowUp(ctx context.Context, instruction, currentURL string) *entity.GenerationResult {
	c.logger.Info("mock follow-up", zap.String("instruction", instruction))

	time.Sleep(300 * time.Millisecond)

	return &entity.GenerationResult{
		Success: true,
		URL:     fmt.Sprintf("https://mock.thumbnails.local/%s.png", uuid.New().String()),
		Message: "Mock thumbnail revised",
	}
}

func (c *MockConnector) Download(ctx context.Context, url string) ([]byte, string, error) {
	c.logger.Info("mock download", zap.String("url", url))

	// 1x1 transparent PNG
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D,
		0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89, 0x00, 0x00, 0x00,
		0x0D, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9C, 0x62, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00, 0x00, 0x00, 0x00, 0x49,
		0x45, 0x4E, 0x44, 0xAE, 0x42, 0x60, 0x82,
	}, "image/png", nil
}
