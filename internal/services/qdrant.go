package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"
)

type NarrativeIndexService interface {
	InitCollection() error
	UpsertNarrative(ctx context.Context, reportID, personName, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]NarrativeMatch, error)
	DeleteNarrative(ctx context.Context, reportID string) error
}

type NarrativeMatch struct {
	ReportID   string
	PersonName string
	Score      float32
	Text       string
}

type narrativeIndexService struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewNarrativeIndexService(urlStr, apiKey, collectionName string) (NarrativeIndexService, error) {
	// Parse URL to extract host, port, and TLS usage
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &narrativeIndexService{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // Gemini text-embedding-004 size
	}, nil
}

// InitCollection implements NarrativeIndexService.
func (q *narrativeIndexService) InitCollection() error {
	ctx := context.Background()

	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Collection already exists")
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})

	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", q.collectionName)
	return nil
}

// UpsertNarrative implements NarrativeIndexService.
func (q *narrativeIndexService) UpsertNarrative(ctx context.Context, reportID, personName, text string, embedding []float32) error {
	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(reportID),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"report_id":   reportID,
			"person_name": personName,
			"text":        text,
		}),
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements NarrativeIndexService.
func (q *narrativeIndexService) SearchSimilar(ctx context.Context, queryEmbedding []float32, limit int) ([]NarrativeMatch, error) {
	searchResult, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var results []NarrativeMatch
	for _, point := range searchResult {
		payload := point.Payload

		match := NarrativeMatch{Score: point.Score}

		if id, ok := payload["report_id"]; ok {
			if val, ok := id.GetKind().(*qdrant.Value_StringValue); ok {
				match.ReportID = val.StringValue
			}
		}

		if name, ok := payload["person_name"]; ok {
			if val, ok := name.GetKind().(*qdrant.Value_StringValue); ok {
				match.PersonName = val.StringValue
			}
		}

		if text, ok := payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				match.Text = val.StringValue
			}
		}

		results = append(results, match)
	}

	return results, nil
}

// DeleteNarrative implements NarrativeIndexService.
func (q *narrativeIndexService) DeleteNarrative(ctx context.Context, reportID string) error {
	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			qdrant.NewMatch("report_id", reportID),
		},
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collectionName,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
				Filter: filter,
			},
		},
	})

	if err != nil {
		return fmt.Errorf("failed to delete narrative: %w", err)
	}

	return nil
}
