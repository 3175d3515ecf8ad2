package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"deepwork/report-generator/internal/models"
)

const pdfCacheTTL = 24 * time.Hour

// PDFCache stores rendered documents keyed by a digest of the input record,
// so re-uploads of the same session skip generation and rendering entirely.
// A nil *PDFCache is valid and disables caching.
type PDFCache struct {
	client *redis.Client
}

func NewPDFCache(ctx context.Context, addr, password string, db int) (*PDFCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &PDFCache{client: client}, nil
}

// Key derives the cache key from the full session record. Identical input
// maps to the identical rendered document, so the digest is a safe identity.
func (c *PDFCache) Key(rec *models.SessionRecord) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return "report:pdf:" + hex.EncodeToString(sum[:])
}

func (c *PDFCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || key == "" {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *PDFCache) Set(ctx context.Context, key string, pdf []byte) error {
	if c == nil || key == "" {
		return nil
	}
	return c.client.Set(ctx, key, pdf, pdfCacheTTL).Err()
}

func (c *PDFCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
