package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/rubrix/internal/question"
)

const (
	questionSetVersion = 1
	keepQuestionSets   = 20
)

// questionSetRepo implements QuestionSetRepo with ent's SQL builder.
type questionSetRepo struct {
	drv  *entsql.Driver
	seq  *sequenceCounter
	keep int
}

func (r *questionSetRepo) SaveQuestionSet(ctx context.Context, qs []question.Question) error {
	if qs == nil {
		qs = []question.Question{}
	}
	data, err := json.Marshal(QuestionSetData{Version: questionSetVersion, Questions: qs})
	if err != nil {
		return fmt.Errorf("marshal question set: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableQuestionSets).
		Columns(colSequence, colTimestamp, "question_count", "data").
		Values(seqNum, time.Now().UTC(), len(qs), string(data)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save question set: %w", err)
	}

	if r.keep > 0 {
		return r.PruneQuestionSets(ctx, r.keep)
	}
	return nil
}

func (r *questionSetRepo) LatestQuestionSet(ctx context.Context) ([]question.Question, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(colID, colSequence, colTimestamp, "question_count", "data").
		From(entsql.Table(tableQuestionSets)).
		OrderBy(entsql.Desc(colSequence)).
		Limit(1).
		Query()

	sets, err := r.query(ctx, query, args, true)
	if err != nil {
		return nil, fmt.Errorf("query latest question set: %w", err)
	}
	if len(sets) == 0 {
		return nil, nil
	}
	return sets[0].Data.Questions, nil
}

func (r *questionSetRepo) QuestionSetHistory(ctx context.Context, limit int) ([]QuestionSet, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(colID, colSequence, colTimestamp, "question_count").
		From(entsql.Table(tableQuestionSets)).
		OrderBy(entsql.Desc(colSequence))
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	sets, err := r.query(ctx, query, args, false)
	if err != nil {
		return nil, fmt.Errorf("query question set history: %w", err)
	}
	return sets, nil
}

func (r *questionSetRepo) GetQuestionSet(ctx context.Context, id int) (*QuestionSet, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(colID, colSequence, colTimestamp, "question_count", "data").
		From(entsql.Table(tableQuestionSets)).
		Where(entsql.EQ(colID, id)).
		Query()

	sets, err := r.query(ctx, query, args, true)
	if err != nil {
		return nil, fmt.Errorf("get question set: %w", err)
	}
	if len(sets) == 0 {
		return nil, nil
	}
	return &sets[0], nil
}

func (r *questionSetRepo) PruneQuestionSets(ctx context.Context, keep int) error {
	// Find the sequence of the newest set that falls outside the window.
	query, args := entsql.Dialect(dialect.SQLite).
		Select(colSequence).
		From(entsql.Table(tableQuestionSets)).
		OrderBy(entsql.Desc(colSequence)).
		Limit(1).
		Offset(keep).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return fmt.Errorf("query question sets for prune: %w", err)
	}
	var threshold int64
	found := rows.Next()
	if found {
		if err := rows.Scan(&threshold); err != nil {
			rows.Close()
			return fmt.Errorf("scan prune threshold: %w", err)
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if !found {
		return nil // fewer than keep sets exist
	}

	query, args = entsql.Dialect(dialect.SQLite).
		Delete(tableQuestionSets).
		Where(entsql.LTE(colSequence, threshold)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("prune question sets: %w", err)
	}
	return nil
}

// query runs a question set select. withData reports whether the data
// column was selected and should be decoded.
func (r *questionSetRepo) query(ctx context.Context, query string, args []any, withData bool) ([]QuestionSet, error) {
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []QuestionSet
	for rows.Next() {
		var s QuestionSet
		dest := []any{&s.ID, &s.Sequence, &s.Timestamp, &s.Count}
		var raw []byte
		if withData {
			dest = append(dest, &raw)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan question set: %w", err)
		}
		if withData {
			if err := json.Unmarshal(raw, &s.Data); err != nil {
				return nil, fmt.Errorf("unmarshal question set %d: %w", s.ID, err)
			}
		}
		sets = append(sets, s)
	}
	return sets, rows.Err()
}
