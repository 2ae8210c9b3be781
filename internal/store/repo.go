package store

import (
	"context"
	"time"

	"github.com/abhisek/rubrix/internal/question"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact purpose match ("" = any)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates LLM usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and inspects LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if id does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// QuestionSetData is the stored form of a working question set.
type QuestionSetData struct {
	Version   int                 `json:"version"`
	Questions []question.Question `json:"questions"`
}

// QuestionSet is one saved version of the working question set.
type QuestionSet struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Count     int
	Data      QuestionSetData
}

// QuestionSetRepo keeps the history of the working question set.
type QuestionSetRepo interface {
	// SaveQuestionSet stores qs as the newest version and prunes old ones.
	SaveQuestionSet(ctx context.Context, qs []question.Question) error

	// LatestQuestionSet returns the newest saved set, or nil if none exist.
	LatestQuestionSet(ctx context.Context) ([]question.Question, error)

	// QuestionSetHistory lists saved versions newest first, without
	// decoding their questions.
	QuestionSetHistory(ctx context.Context, limit int) ([]QuestionSet, error)

	// GetQuestionSet returns one saved version, or nil if id does not exist.
	GetQuestionSet(ctx context.Context, id int) (*QuestionSet, error)

	// PruneQuestionSets deletes all but the keep most recent versions.
	PruneQuestionSets(ctx context.Context, keep int) error
}

// Credential is a secret issued by the credential exchange.
type Credential struct {
	Name      string
	User      string
	Secret    string
	UpdatedAt time.Time
}

// CredentialRepo caches issued credentials by name.
type CredentialRepo interface {
	// SaveCredential inserts or replaces the credential named c.Name.
	SaveCredential(ctx context.Context, c Credential) error

	// LoadCredential returns the named credential, or nil if none is stored.
	LoadCredential(ctx context.Context, name string) (*Credential, error)

	// ClearCredential removes the named credential. Clearing a missing
	// credential is not an error.
	ClearCredential(ctx context.Context, name string) error
}
