// Package search maintains the admin dashboard's listing/search indexes.
// The sync worker feeds them from the outbox, which doubles as the
// invalidation path for admin-facing listing views.
package search

import (
	"bytes"
	"context"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"
)

const (
	IdxRegistrants   = "registrants_v1"
	IdxTeams         = "teams_v1"
	IdxRegistrations = "registrations_v1"
)

func EnsureIndexes(ctx context.Context, c *es.Client) error {
	mapping := `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"name":{"type":"text"},"email":{"type":"keyword"},"roll_no":{"type":"keyword"},
		"role":{"type":"keyword"},"status":{"type":"keyword"},"team_id":{"type":"keyword"},
		"updated_at":{"type":"date"}
	}}}`
	if err := ensure(ctx, c, IdxRegistrants, mapping); err != nil {
		return err
	}

	mapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"name":{"type":"text"},"status":{"type":"keyword"},"payment_mode":{"type":"keyword"},
		"capacity":{"type":"integer"},"updated_at":{"type":"date"}
	}}}`
	if err := ensure(ctx, c, IdxTeams, mapping); err != nil {
		return err
	}

	mapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
		"code":{"type":"keyword"},"payment_status":{"type":"keyword"},"amount":{"type":"integer"},
		"verified_by":{"type":"keyword"},"created_at":{"type":"date"},"updated_at":{"type":"date"}
	}}}`
	return ensure(ctx, c, IdxRegistrations, mapping)
}

func ensure(ctx context.Context, c *es.Client, index, body string) error {
	exists, _ := c.Indices.Exists([]string{index})
	if exists.StatusCode == 200 {
		return nil
	}
	_, err := c.Indices.Create(index, c.Indices.Create.WithBody(bytes.NewBufferString(body)), c.Indices.Create.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	return nil
}
