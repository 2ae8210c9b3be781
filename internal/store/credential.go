package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// credentialRepo implements CredentialRepo with ent's SQL builder.
type credentialRepo struct {
	drv *entsql.Driver
}

func (r *credentialRepo) SaveCredential(ctx context.Context, c Credential) error {
	if c.Name == "" {
		return fmt.Errorf("credential name is required")
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableCredentials).
		Columns("name", "username", "secret", "updated_at").
		Values(c.Name, c.User, c.Secret, updated.UTC()).
		OnConflict(
			entsql.ConflictColumns("name"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save credential %q: %w", c.Name, err)
	}
	return nil
}

func (r *credentialRepo) LoadCredential(ctx context.Context, name string) (*Credential, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select("name", "username", "secret", "updated_at").
		From(entsql.Table(tableCredentials)).
		Where(entsql.EQ("name", name)).
		Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("load credential %q: %w", name, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	var c Credential
	if err := rows.Scan(&c.Name, &c.User, &c.Secret, &c.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan credential %q: %w", name, err)
	}
	return &c, nil
}

func (r *credentialRepo) ClearCredential(ctx context.Context, name string) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Delete(tableCredentials).
		Where(entsql.EQ("name", name)).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear credential %q: %w", name, err)
	}
	return nil
}
