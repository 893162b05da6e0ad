package repository

import (
	"testing"
)

func TestLikeClauseBuildsConditionAndArgs(t *testing.T) {
	condition, args := likeClause("LIKE", "wave", []string{"title", "slug"})
	if condition != "title LIKE ? OR slug LIKE ?" {
		t.Fatalf("condition mismatch, got %s", condition)
	}
	if len(args) != 2 {
		t.Fatalf("args len want 2 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%wave%" {
			t.Fatalf("args[%d] want %%wave%% got %v", idx, arg)
		}
	}
}

func TestLikeClauseCaseInsensitiveOperator(t *testing.T) {
	condition, _ := likeClause("ILIKE", "wave", []string{"title"})
	if condition != "title ILIKE ?" {
		t.Fatalf("condition should use ILIKE, got %s", condition)
	}
}

func TestLikeClauseSkipsEmptyColumns(t *testing.T) {
	condition, args := likeClause("LIKE", "wave", []string{"title", " ", ""})
	if condition != "title LIKE ?" {
		t.Fatalf("condition mismatch, got %s", condition)
	}
	if len(args) != 1 {
		t.Fatalf("args len want 1 got %d", len(args))
	}
}

func TestLikeOperatorDefaultsToLike(t *testing.T) {
	if op := likeOperator(nil); op != "LIKE" {
		t.Fatalf("nil db should fall back to LIKE, got %s", op)
	}
}
