// Package search implements the full-text index over RediSearch.
//
// Documents are mirrored into Redis hashes under one key prefix and
// covered by a single FT index. The index is secondary and eventually
// consistent: writes here are allowed to lag or fail without affecting
// the relational store, and readers treat its hits as candidates to be
// re-checked against the store.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"helsejournal/internal/domain"
)

const (
	keyPrefix = "hj:doc:"
	indexName = "hj:doc:idx"

	highlightOpen  = "<b>"
	highlightClose = "</b>"
)

// Config holds connection parameters for the search index.
type Config struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// Index is the RediSearch-backed search index.
type Index struct {
	client rueidis.Client
}

// New connects to Redis. Call EnsureIndex before the first query.
func New(cfg Config) (*Index, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{cfg.Addr},
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}

	return &Index{client: client}, nil
}

// Close shuts down the client.
func (i *Index) Close() {
	i.client.Close()
}

// Ping checks connectivity.
func (i *Index) Ping(ctx context.Context) error {
	cmd := i.client.B().Ping().Build()
	if err := i.client.Do(ctx, cmd).Error(); err != nil {
		return classify(err)
	}
	return nil
}

// EnsureIndex creates the FT index if it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	args := []string{
		indexName,
		"ON", "HASH",
		"PREFIX", "1", keyPrefix,
		"SCHEMA",
		"title", "TEXT",
		"hospital", "TEXT",
		"doctor", "TEXT",
		"content", "TEXT",
		"year", "NUMERIC",
		"hospital_tag", "TAG",
	}

	cmd := i.client.B().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := i.client.Do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return classify(err)
	}
	return nil
}

// IndexDocument writes one document into the index. Metadata fields
// ride alongside the extracted text so title/hospital/doctor matches
// rank too, and so filters can be pushed into the query. The hash is
// rewritten from scratch: a field cleared by a metadata edit must not
// keep matching its old value.
func (i *Index) IndexDocument(ctx context.Context, doc *domain.Document) error {
	fields := map[string]string{
		"title":   doc.DisplayTitle(),
		"content": doc.ExtractedText,
	}
	if doc.Hospital != nil {
		fields["hospital"] = *doc.Hospital
		fields["hospital_tag"] = strings.ToLower(*doc.Hospital)
	}
	if doc.Doctor != nil {
		fields["doctor"] = *doc.Doctor
	}
	if doc.Year != nil {
		fields["year"] = strconv.Itoa(*doc.Year)
	}

	key := keyPrefix + doc.ID
	hset := i.client.B().Hset().Key(key).FieldValue()
	for k, v := range fields {
		hset = hset.FieldValue(k, v)
	}

	cmds := []rueidis.Completed{
		i.client.B().Del().Key(key).Build(),
		hset.Build(),
	}
	for _, resp := range i.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return classify(err)
		}
	}
	return nil
}

// RemoveDocument drops a document from the index. Removing an already
// absent document is not an error.
func (i *Index) RemoveDocument(ctx context.Context, id string) error {
	cmd := i.client.B().Del().Key(keyPrefix + id).Build()
	if err := i.client.Do(ctx, cmd).Error(); err != nil {
		return classify(err)
	}
	return nil
}

// Query runs a ranked full-text search with server-side highlighted
// snippets. Filters are pushed into the query string: year as a
// numeric range, hospital as an exact tag match.
func (i *Index) Query(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.IndexHit, error) {
	queryStr := buildQuery(query, filters)

	args := []string{
		indexName, queryStr,
		"RETURN", "1", "content",
		"SUMMARIZE", "FIELDS", "1", "content", "FRAGS", "1", "LEN", "25",
		"HIGHLIGHT", "FIELDS", "1", "content", "TAGS", highlightOpen, highlightClose,
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	}

	cmd := i.client.B().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := i.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, classify(err)
	}

	return parseHits(raw)
}

// parseHits decodes a WITHSCORES FT.SEARCH reply.
// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
func parseHits(raw []rueidis.RedisMessage) ([]domain.IndexHit, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	hits := make([]domain.IndexHit, 0, total)
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}

		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}

		hits = append(hits, domain.IndexHit{
			DocumentID: strings.TrimPrefix(key, keyPrefix),
			Score:      score,
			Snippet:    fieldValue(fields, "content"),
		})
	}

	return hits, nil
}

// fieldValue extracts one value from a flat [name, value, ...] reply.
func fieldValue(fields []rueidis.RedisMessage, name string) string {
	for i := 0; i+1 < len(fields); i += 2 {
		k, err := fields[i].ToString()
		if err != nil || k != name {
			continue
		}
		v, err := fields[i+1].ToString()
		if err != nil {
			return ""
		}
		return v
	}
	return ""
}
