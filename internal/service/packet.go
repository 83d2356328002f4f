package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"claimsapi/internal/model"
	"claimsapi/internal/pipeline"
	"claimsapi/internal/repository"
	"claimsapi/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("packet not found")
	ErrReaderNil  = errors.New("reader is nil")

	// ErrUnreadablePacket marks the one fatal per-packet condition: the
	// uploaded bytes cannot be parsed as a document packet at all.
	ErrUnreadablePacket = errors.New("packet cannot be read")
)

// FeatureProvider turns raw packet bytes into per-page features.
type FeatureProvider interface {
	PageFeatures(ctx context.Context, packet []byte) ([]pipeline.PageFeature, error)
}

// ProcessOptions carries per-request overrides of the segmentation knobs.
// Zero values keep the configured defaults.
type ProcessOptions struct {
	SimilarityThreshold float64
	ConsecutiveLowPages int
}

// PacketListResult is the service-level DTO for paginated packets.
type PacketListResult struct {
	Items []model.Packet `json:"data"`
	Total int            `json:"total"`
}

// PacketService defines the use cases for handling claims packets.
type PacketService interface {
	// Process stores the raw packet in object storage, runs the decision
	// pipeline over it, persists the outcome, and returns the stored packet.
	// Storage is rolled back if the DB save fails.
	Process(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64, opts ProcessOptions) (*model.Packet, error)

	// List returns packets using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*PacketListResult, error)

	// Get returns a single packet by its ID.
	Get(ctx context.Context, id string) (*model.Packet, error)
}

// packetService is a concrete implementation of PacketService.
type packetService struct {
	store     storage.Storage
	repo      repository.PacketRepository
	provider  FeatureProvider
	processor *pipeline.Processor
	metrics   *Metrics
	tracer    trace.Tracer
}

// NewPacketService constructs a new PacketService. metrics may be nil.
func NewPacketService(store storage.Storage, repo repository.PacketRepository, provider FeatureProvider, processor *pipeline.Processor, metrics *Metrics) PacketService {
	return &packetService{
		store:     store,
		repo:      repo,
		provider:  provider,
		processor: processor,
		metrics:   metrics,
		tracer:    otel.Tracer("claimsapi/service"),
	}
}

func (s *packetService) Process(ctx context.Context, r io.Reader, originalFilename string, contentType string, size int64, opts ProcessOptions) (*model.Packet, error) {
	if r == nil {
		return nil, ErrReaderNil
	}

	ctx, span := s.tracer.Start(ctx, "packet.process")
	defer span.End()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if size <= 0 {
		size = int64(len(raw))
	}

	// Store the original bytes first; the raw scan is the audit trail even
	// when processing later fails.
	ext := filepath.Ext(originalFilename)
	genName := uuid.New().String() + ext
	key := filepath.ToSlash(filepath.Join("packets", genName))

	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(raw), storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	pages, err := s.provider.PageFeatures(ctx, raw)
	if err != nil {
		// Unreadable input is fatal for this packet; drop the stored object.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("%w: %v; rollback delete failed: %v", ErrUnreadablePacket, err, delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePacket, err)
	}

	result := s.processorFor(opts).Process(ctx, pages)
	span.SetAttributes(
		attribute.Int("packet.pages", len(pages)),
		attribute.Int("packet.documents", result.TotalDocuments),
		attribute.String("packet.validation_status", result.Validation.Status),
	)
	if s.metrics != nil {
		s.metrics.PacketsProcessed.WithLabelValues(result.Validation.Status).Inc()
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}

	packet := &model.Packet{
		ID:             uuid.New().String(),
		Filename:       genName,
		StoragePath:    objInfo.Key,
		Size:           objInfo.Size,
		ContentType:    objInfo.ContentType,
		Status:         model.PacketStatusProcessed,
		TotalDocuments: result.TotalDocuments,
		Result:         resultJSON,
		CreatedAt:      time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, packet)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	return stored, nil
}

// processorFor applies per-request overrides without mutating the shared
// processor.
func (s *packetService) processorFor(opts ProcessOptions) *pipeline.Processor {
	if opts.SimilarityThreshold <= 0 && opts.ConsecutiveLowPages <= 0 {
		return s.processor
	}
	p := *s.processor
	if opts.SimilarityThreshold > 0 && opts.SimilarityThreshold < 1 {
		p.Cfg.SimilarityThreshold = opts.SimilarityThreshold
	}
	if opts.ConsecutiveLowPages > 0 {
		p.Cfg.ConsecutiveLowPages = opts.ConsecutiveLowPages
	}
	return &p
}

// List returns paginated packets without exposing repository types.
func (s *packetService) List(ctx context.Context, limit, offset int) (*PacketListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &PacketListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a packet by ID.
func (s *packetService) Get(ctx context.Context, id string) (*model.Packet, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}
