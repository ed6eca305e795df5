//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search_index.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"relay-hub/domain"
	"relay-hub/errors"

	"github.com/blugelabs/bluge"
)

type ISearchIndex interface {
	IndexMessage(doc domain.MessageDocument) error
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
	Close() error
}

type SearchHit struct {
	ID        string `json:"id"`
	SenderID  string `json:"sender_id"`
	TargetID  string `json:"target_id"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// SearchIndex maintains a Bluge full-text index over chat content.
// Indexing is best-effort and happens off the routing path, in the
// recorder worker; attachment-only messages are skipped.
type SearchIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchIndex(path string, log *slog.Logger) (*SearchIndex, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	return &SearchIndex{writer: writer, log: log}, nil
}

func (s *SearchIndex) IndexMessage(doc domain.MessageDocument) error {
	if doc.Content == nil || *doc.Content == "" {
		return nil
	}

	// The timestamp is stored zero-padded so it survives as a sortable
	// stored keyword without numeric encoding.
	indexDoc := bluge.NewDocument(doc.ID.String()).
		AddField(bluge.NewTextField("content", *doc.Content).StoreValue()).
		AddField(bluge.NewKeywordField("sender_id", doc.SenderID).StoreValue()).
		AddField(bluge.NewKeywordField("target_id", doc.TargetID).StoreValue()).
		AddField(bluge.NewKeywordField("timestamp", fmt.Sprintf("%013d", doc.Timestamp)).StoreValue())

	return s.writer.Update(indexDoc.ID(), indexDoc)
}

// Search runs a match query against message content and returns up to
// limit hits, newest first.
func (s *SearchIndex) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if query == "" {
		return nil, errors.ErrEmptyQuery
	}

	reader, err := s.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	matchQuery := bluge.NewMatchQuery(query).SetField("content")
	request := bluge.NewTopNSearch(limit, matchQuery)

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var hits []SearchHit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, fmt.Errorf("iterate search results: %w", err)
		}
		if match == nil {
			break
		}

		var hit SearchHit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.ID = string(value)
			case "sender_id":
				hit.SenderID = string(value)
			case "target_id":
				hit.TargetID = string(value)
			case "content":
				hit.Content = string(value)
			case "timestamp":
				hit.Timestamp, _ = strconv.ParseInt(string(value), 10, 64)
			}
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("load stored fields: %w", err)
		}
		hits = append(hits, hit)
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Timestamp > hits[j].Timestamp })
	return hits, nil
}

func (s *SearchIndex) Close() error {
	return s.writer.Close()
}
