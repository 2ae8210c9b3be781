package store

import (
	entschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableLLMEvents    = "llm_request_events"
	tableQuestionSets = "question_sets"
	tableCredentials  = "credentials"
	tableSequence     = "global_sequence"

	colID        = "id"
	colSequence  = "sequence"
	colTimestamp = "timestamp"
)

// textSize makes ent declare an unbounded text column.
const textSize = 2147483647

var (
	llmEventColumns = []*entschema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSequence, Type: field.TypeInt64, Unique: true},
		{Name: colTimestamp, Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: textSize, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: textSize, Default: ""},
	}
	llmEventsTable = &entschema.Table{
		Name:       tableLLMEvents,
		Columns:    llmEventColumns,
		PrimaryKey: []*entschema.Column{llmEventColumns[0]},
		Indexes: []*entschema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*entschema.Column{llmEventColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*entschema.Column{llmEventColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*entschema.Column{llmEventColumns[9]}},
		},
	}

	questionSetColumns = []*entschema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colSequence, Type: field.TypeInt64, Unique: true},
		{Name: colTimestamp, Type: field.TypeTime},
		{Name: "question_count", Type: field.TypeInt, Default: 0},
		{Name: "data", Type: field.TypeJSON},
	}
	questionSetsTable = &entschema.Table{
		Name:       tableQuestionSets,
		Columns:    questionSetColumns,
		PrimaryKey: []*entschema.Column{questionSetColumns[0]},
		Indexes: []*entschema.Index{
			{Name: "questionset_timestamp", Columns: []*entschema.Column{questionSetColumns[2]}},
		},
	}

	credentialColumns = []*entschema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "username", Type: field.TypeString},
		{Name: "secret", Type: field.TypeString, Size: textSize},
		{Name: "updated_at", Type: field.TypeTime},
	}
	credentialsTable = &entschema.Table{
		Name:       tableCredentials,
		Columns:    credentialColumns,
		PrimaryKey: []*entschema.Column{credentialColumns[0]},
	}

	sequenceColumns = []*entschema.Column{
		{Name: colID, Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	sequenceTable = &entschema.Table{
		Name:       tableSequence,
		Columns:    sequenceColumns,
		PrimaryKey: []*entschema.Column{sequenceColumns[0]},
	}

	// tables is every table managed by the migration.
	tables = []*entschema.Table{
		llmEventsTable,
		questionSetsTable,
		credentialsTable,
		sequenceTable,
	}
)
