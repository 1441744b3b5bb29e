package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"pantry-cookbook/internal/infrastructure/config"
	"pantry-cookbook/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // 支援 WebP
)

const (
	jpegQuality     = 85
	downloadTimeout = 30 * time.Second
)

// RecipeImageSetter 更新食譜圖片路徑
type RecipeImageSetter interface {
	SetImage(ctx context.Context, id int64, path string) error
}

// Service 食譜圖片處理服務
type Service struct {
	cfg     config.ImageConfig
	client  *resty.Client
	recipes RecipeImageSetter
}

// NewService 創建圖片處理服務
func NewService(cfg config.ImageConfig, recipes RecipeImageSetter) *Service {
	return &Service{
		cfg:     cfg,
		client:  resty.New().SetTimeout(downloadTimeout),
		recipes: recipes,
	}
}

// SaveRecipeImage 接受 data URI、base64 或 http(s) 網址，轉為 JPEG 存檔並更新食譜
func (s *Service) SaveRecipeImage(ctx context.Context, recipeID int64, data string) (string, error) {
	raw, err := s.Load(ctx, data)
	if err != nil {
		return "", err
	}
	encoded, err := s.Process(raw)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image dir: %w", err)
	}
	path := filepath.Join(s.cfg.Dir, fmt.Sprintf("%d-%s.jpg", recipeID, common.GenerateUUID()))
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	if err := s.recipes.SetImage(ctx, recipeID, path); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	common.LogInfo("食譜圖片已儲存",
		zap.Int64("recipe_id", recipeID),
		zap.String("path", path),
		zap.Int("bytes", len(encoded)),
	)
	return path, nil
}

// Load 取得原始圖片位元組並檢查大小上限
func (s *Service) Load(ctx context.Context, data string) ([]byte, error) {
	data = strings.TrimSpace(data)
	switch {
	case data == "":
		return nil, common.ErrInvalidImage.Withf("image data is empty")
	case strings.HasPrefix(data, "http://"), strings.HasPrefix(data, "https://"):
		return s.download(ctx, data)
	}

	// 處理 data URI 與純 base64
	if strings.HasPrefix(data, "data:") {
		comma := strings.Index(data, ",")
		if comma < 0 || !strings.Contains(data[:comma], ";base64") {
			return nil, common.ErrInvalidImage.Withf("invalid data URI")
		}
		data = data[comma+1:]
	}
	if int64(base64.StdEncoding.DecodedLen(len(data))) > s.cfg.MaxSizeBytes+2 {
		return nil, common.ErrImageTooLarge.Withf("image exceeds %d bytes", s.cfg.MaxSizeBytes)
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, common.ErrInvalidImage.Wrap(err)
	}
	if int64(len(decoded)) > s.cfg.MaxSizeBytes {
		return nil, common.ErrImageTooLarge.Withf("image exceeds %d bytes", s.cfg.MaxSizeBytes)
	}
	return decoded, nil
}

func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.client.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return nil, common.ErrInvalidImage.Wrap(err)
	}
	body := resp.RawBody()
	defer body.Close() //nolint:errcheck

	if resp.StatusCode() != http.StatusOK {
		return nil, common.ErrInvalidImage.Withf("download returned status %d", resp.StatusCode())
	}
	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxSizeBytes+1))
	if err != nil {
		return nil, common.ErrInvalidImage.Wrap(err)
	}
	if int64(len(data)) > s.cfg.MaxSizeBytes {
		return nil, common.ErrImageTooLarge.Withf("image exceeds %d bytes", s.cfg.MaxSizeBytes)
	}
	return data, nil
}

// Process 解碼 JPEG/PNG/GIF/WebP，縮小至最長邊不超過 MaxDimension，輸出 JPEG
func (s *Service) Process(raw []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, common.ErrInvalidImage.Wrap(err)
	}
	if !isSupportedFormat(format) {
		return nil, common.ErrInvalidImage.Withf("unsupported image format: %s", format)
	}

	img = downscale(img, s.cfg.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image as JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// downscale 等比例縮小，maxDim <= 0 或已在範圍內時原樣回傳
func downscale(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	nw, nh := maxDim, h*maxDim/w
	if h > w {
		nw, nh = w*maxDim/h, maxDim
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	supportedFormats := map[string]bool{
		"jpeg": true,
		"png":  true,
		"gif":  true,
		"webp": true,
	}
	return supportedFormats[format]
}
