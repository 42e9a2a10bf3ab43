package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Remote delegates to the hosted table store through GORM.
type Remote struct {
	database *gorm.DB
}

func NewRemote(database *gorm.DB) *Remote {
	return &Remote{database: database}
}

func (remote *Remote) List(ctx context.Context, collection Collection, query Query, dest any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := query.validate(); err != nil {
		return err
	}

	tx := remote.database.WithContext(ctx).Table(string(collection))
	if len(query.Equals) > 0 {
		tx = tx.Where(map[string]any(query.Equals))
	}
	if query.OrderBy != "" {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: query.OrderBy},
			Desc:   query.Descending,
		})
	}

	if err := tx.Find(dest).Error; err != nil {
		return remoteError("list", collection, err)
	}
	return nil
}

func (remote *Remote) Insert(ctx context.Context, collection Collection, record any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := remote.database.WithContext(ctx).Table(string(collection)).Create(record).Error; err != nil {
		return remoteError("insert", collection, err)
	}
	return nil
}

func (remote *Remote) Update(ctx context.Context, collection Collection, id string, patch map[string]any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := (Query{Equals: patch}).validate(); err != nil {
		return err
	}
	if len(patch) == 0 {
		return nil
	}

	result := remote.database.WithContext(ctx).
		Table(string(collection)).
		Where("id = ?", id).
		Updates(patch)
	if result.Error != nil {
		return remoteError("update", collection, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update %s %s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (remote *Remote) Remove(ctx context.Context, collection Collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	tx := remote.database.WithContext(ctx)
	statement := "DELETE FROM " + tx.Statement.Quote(string(collection)) + " WHERE id = ?"
	if err := tx.Exec(statement, id).Error; err != nil {
		return remoteError("remove", collection, err)
	}
	return nil
}

func remoteError(op string, collection Collection, err error) error {
	if isUniqueViolation(err) {
		err = fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return &BackendError{Op: op, Collection: collection, Err: err}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "sqlstate 23505") ||
		strings.Contains(message, "duplicate key value")
}
