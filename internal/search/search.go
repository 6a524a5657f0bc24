package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/internal/models"
)

// Indexer keeps the full-text article index in step with the catalog.
type Indexer interface {
	IndexArticle(ctx context.Context, a *models.Article) error
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error)
}

// ErrDisabled is returned by Nop.Search when no search backend is configured.
var ErrDisabled = errors.New("search is not configured")

type Nop struct{}

func (Nop) IndexArticle(context.Context, *models.Article) error { return nil }
func (Nop) DeleteArticle(context.Context, uuid.UUID) error      { return nil }
func (Nop) Search(context.Context, string, int, int) (int64, []uuid.UUID, error) {
	return 0, nil, ErrDisabled
}

type Document struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Condition   string `json:"condition"`
	Price       string `json:"price"`
}

func NewDocument(a *models.Article) Document {
	return Document{
		ID:          a.ID.String(),
		Title:       a.Title,
		Description: a.Description,
		Category:    a.Category,
		Condition:   string(a.Condition),
		Price:       a.Price.StringFixed(2),
	}
}

type Elastic struct {
	ES    *elasticsearch.Client
	Index string
}

func NewElastic(es *elasticsearch.Client, index string) *Elastic {
	return &Elastic{ES: es, Index: index}
}

func (e *Elastic) IndexArticle(ctx context.Context, a *models.Article) error {
	body, err := json.Marshal(NewDocument(a))
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	res, err := e.ES.Index(
		e.Index,
		bytes.NewReader(body),
		e.ES.Index.WithContext(ctx),
		e.ES.Index.WithDocumentID(a.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("index article: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index article", res.Status(), res.Body)
	}
	return nil
}

func (e *Elastic) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	res, err := e.ES.Delete(e.Index, id.String(), e.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete article", res.Status(), res.Body)
	}
	return nil
}

func (e *Elastic) Search(ctx context.Context, query string, from, size int) (int64, []uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from":    from,
		"size":    size,
		"_source": []string{"id"},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := e.ES.Search(
		e.ES.Search.WithContext(ctx),
		e.ES.Search.WithIndex(e.Index),
		e.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	return decodeHits(res.Body)
}

func decodeHits(r io.Reader) (int64, []uuid.UUID, error) {
	var out struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source Document `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(out.Hits.Hits))
	for _, h := range out.Hits.Hits {
		id, err := uuid.Parse(h.Source.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return out.Hits.Total.Value, ids, nil
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 1024))
	return fmt.Errorf("%s: elasticsearch %s: %s", op, status, strings.TrimSpace(string(b)))
}
