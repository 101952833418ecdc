package search

import (
	"context"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"helsejournal/internal/domain"
)

func strptr(s string) *string { return &s }

func testDoc(id string) *domain.Document {
	year := 2023
	return &domain.Document{
		ID:            id,
		Title:         "Prøvesvar",
		ExtractedText: "hemoglobin 14.2",
		Year:          &year,
	}
}

func hasField(cmd []string, name string) bool {
	for i := 2; i < len(cmd); i += 2 {
		if cmd[i] == name {
			return true
		}
	}
	return false
}

func TestIndexDocumentRewritesHash(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("DEL", "hj:doc:doc-1"),
			mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "HSET" && cmd[1] == "hj:doc:doc-1" &&
					hasField(cmd, "title") && hasField(cmd, "content") &&
					hasField(cmd, "hospital") && hasField(cmd, "hospital_tag") &&
					hasField(cmd, "year")
			})).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(5)),
		})

	idx := &Index{client: c}
	doc := testDoc("doc-1")
	doc.Hospital = strptr("Oslo Clinic")
	if err := idx.IndexDocument(context.Background(), doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// A re-index after clearing a field must drop the old hash wholesale,
// not leave the stale field matching its previous value.
func TestIndexDocumentClearedFieldDoesNotLinger(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(),
			mock.Match("DEL", "hj:doc:doc-1"),
			mock.MatchFn(func(cmd []string) bool {
				return cmd[0] == "HSET" && cmd[1] == "hj:doc:doc-1" &&
					!hasField(cmd, "hospital") && !hasField(cmd, "hospital_tag")
			})).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.Result(mock.RedisInt64(2)),
		})

	idx := &Index{client: c}
	if err := idx.IndexDocument(context.Background(), testDoc("doc-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndexDocumentWriteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(1)),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	idx := &Index{client: c}
	if err := idx.IndexDocument(context.Background(), testDoc("doc-1")); err == nil {
		t.Fatal("expected error")
	}
}

func TestRemoveDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "hj:doc:doc-1")).
		Return(mock.Result(mock.RedisInt64(1)))

	idx := &Index{client: c}
	if err := idx.RemoveDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
