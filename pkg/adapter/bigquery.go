package adapter

import (
	"context"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/goerr/v2"
)

// ConversationRow is the flattened transcript record loaded into
// BigQuery for downstream evaluation queries.
type ConversationRow struct {
	SessionID     string    `bigquery:"session_id"`
	Persona       string    `bigquery:"persona"`
	Variant       string    `bigquery:"assistant_variant"`
	MemoryEnabled bool      `bigquery:"memory_enabled"`
	Location      string    `bigquery:"location"`
	Reason        string    `bigquery:"reason"`
	Degenerate    bool      `bigquery:"degenerate"`
	NumTurns      int       `bigquery:"num_turns"`
	Booked        bool      `bigquery:"booked"`
	Transcript    string    `bigquery:"transcript"`
	StartedAt     time.Time `bigquery:"started_at"`
	EndedAt       time.Time `bigquery:"ended_at"`
}

// BigQuery exports conversation records for evaluation pipelines
type BigQuery interface {
	// InsertConversations streams rows into dataset.table
	InsertConversations(ctx context.Context, datasetID, table string, rows []*ConversationRow) error
}

type bigqueryClient struct {
	client *bigquery.Client
}

// NewBigQuery creates a new BigQuery export client
func NewBigQuery(ctx context.Context, projectID string) (BigQuery, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create BigQuery client")
	}

	return &bigqueryClient{client: client}, nil
}

func (bq *bigqueryClient) InsertConversations(ctx context.Context, datasetID, table string, rows []*ConversationRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := bq.client.Dataset(datasetID).Table(table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return goerr.Wrap(err, "failed to insert conversation rows",
			goerr.V("dataset", datasetID), goerr.V("table", table), goerr.V("rows", len(rows)))
	}

	return nil
}
