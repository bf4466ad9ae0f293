package repository

import (
	"database/sql"
	"errors"
)

// HandleNotFound processes a database query result, converting sql.ErrNoRows
// to a nil result without error. Find* operations use it so a missing row is
// a nil, nil answer the caller maps to its own not-found meaning: an unknown
// admin handle, an expired-and-purged session, an article owned by someone
// else.
//
// Usage:
//
//	var article model.Article
//	err := r.db.GetContext(ctx, &article, query, args...)
//	return HandleNotFound(&article, err)
func HandleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
