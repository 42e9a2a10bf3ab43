package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type row = map[string]any

// Local keeps every collection as a JSON array under a fixed key of a KeyValue
// namespace and filters and orders in memory. Corrupt arrays read as empty.
type Local struct {
	mu     sync.Mutex
	kv     KeyValue
	logger logrus.FieldLogger
}

func NewLocal(kv KeyValue, logger logrus.FieldLogger) *Local {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Local{kv: kv, logger: logger}
}

func (local *Local) List(ctx context.Context, collection Collection, query Query, dest any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := query.validate(); err != nil {
		return err
	}

	local.mu.Lock()
	rows, err := local.load(ctx, collection)
	local.mu.Unlock()
	if err != nil {
		return err
	}

	matched := make([]row, 0, len(rows))
	for _, candidate := range rows {
		if matchesEquals(candidate, query.Equals) {
			matched = append(matched, candidate)
		}
	}

	if query.OrderBy != "" {
		collator := collate.New(language.BrazilianPortuguese)
		sort.SliceStable(matched, func(i, j int) bool {
			order := compareValues(collator, matched[i][query.OrderBy], matched[j][query.OrderBy])
			if query.Descending {
				return order > 0
			}
			return order < 0
		})
	}

	encoded, err := json.Marshal(matched)
	if err != nil {
		return fmt.Errorf("encode %s rows: %w", collection, err)
	}
	if err := json.Unmarshal(encoded, dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", collection, err)
	}
	return nil
}

func (local *Local) Insert(ctx context.Context, collection Collection, record any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	inserted, err := toRow(record)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", collection, err)
	}
	id, _ := inserted["id"].(string)
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("insert %s: record id is required", collection)
	}

	local.mu.Lock()
	defer local.mu.Unlock()

	rows, err := local.load(ctx, collection)
	if err != nil {
		return err
	}
	for _, existing := range rows {
		if existing["id"] == id {
			return fmt.Errorf("insert %s %s: %w", collection, id, ErrDuplicate)
		}
	}

	return local.save(ctx, collection, append(rows, inserted))
}

func (local *Local) Update(ctx context.Context, collection Collection, id string, patch map[string]any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := (Query{Equals: patch}).validate(); err != nil {
		return err
	}

	normalized, err := toRow(patch)
	if err != nil {
		return fmt.Errorf("encode %s patch: %w", collection, err)
	}
	delete(normalized, "id")

	local.mu.Lock()
	defer local.mu.Unlock()

	rows, err := local.load(ctx, collection)
	if err != nil {
		return err
	}

	found := false
	for _, existing := range rows {
		if existing["id"] != id {
			continue
		}
		for column, value := range normalized {
			existing[column] = value
		}
		found = true
		break
	}
	if !found {
		return fmt.Errorf("update %s %s: %w", collection, id, ErrNotFound)
	}

	return local.save(ctx, collection, rows)
}

func (local *Local) Remove(ctx context.Context, collection Collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}

	local.mu.Lock()
	defer local.mu.Unlock()

	rows, err := local.load(ctx, collection)
	if err != nil {
		return err
	}

	kept := make([]row, 0, len(rows))
	for _, existing := range rows {
		if existing["id"] != id {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(rows) {
		return nil
	}
	return local.save(ctx, collection, kept)
}

func (local *Local) load(ctx context.Context, collection Collection) ([]row, error) {
	raw, ok, err := local.kv.Get(ctx, collection.StorageKey())
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []row{}, nil
	}

	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	rows := make([]row, 0)
	if err := decoder.Decode(&rows); err != nil {
		local.logger.WithError(err).WithField("collection", collection).Warn("local collection is corrupt, reading as empty")
		return []row{}, nil
	}

	valid := rows[:0]
	for _, candidate := range rows {
		if candidate != nil {
			valid = append(valid, candidate)
		}
	}
	return valid, nil
}

func (local *Local) save(ctx context.Context, collection Collection, rows []row) error {
	encoded, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	return local.kv.Set(ctx, collection.StorageKey(), string(encoded))
}

func toRow(value any) (row, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	decoded := row{}
	if err := decoder.Decode(&decoded); err != nil {
		return nil, err
	}
	return decoded, nil
}

func matchesEquals(candidate row, equals map[string]any) bool {
	for column, want := range equals {
		if !sameJSONValue(candidate[column], want) {
			return false
		}
	}
	return true
}

func sameJSONValue(left any, right any) bool {
	leftEncoded, leftErr := json.Marshal(left)
	rightEncoded, rightErr := json.Marshal(right)
	if leftErr != nil || rightErr != nil {
		return false
	}
	return bytes.Equal(leftEncoded, rightEncoded)
}

// compareValues orders JSON scalars: nil first, then numbers and timestamps by their
// natural order. Remaining strings follow pt-BR collation so accented names sort the
// way the remote database orders them.
func compareValues(collator *collate.Collator, left any, right any) int {
	switch {
	case left == nil && right == nil:
		return 0
	case left == nil:
		return -1
	case right == nil:
		return 1
	}

	leftNumber, leftIsNumber := left.(json.Number)
	rightNumber, rightIsNumber := right.(json.Number)
	if leftIsNumber && rightIsNumber {
		leftFloat, leftErr := leftNumber.Float64()
		rightFloat, rightErr := rightNumber.Float64()
		if leftErr == nil && rightErr == nil {
			switch {
			case leftFloat < rightFloat:
				return -1
			case leftFloat > rightFloat:
				return 1
			default:
				return 0
			}
		}
	}

	leftBool, leftIsBool := left.(bool)
	rightBool, rightIsBool := right.(bool)
	if leftIsBool && rightIsBool {
		switch {
		case leftBool == rightBool:
			return 0
		case !leftBool:
			return -1
		default:
			return 1
		}
	}

	leftText := fmt.Sprint(left)
	rightText := fmt.Sprint(right)
	leftTime, leftErr := time.Parse(time.RFC3339Nano, leftText)
	rightTime, rightErr := time.Parse(time.RFC3339Nano, rightText)
	if leftErr == nil && rightErr == nil {
		return leftTime.Compare(rightTime)
	}
	return collator.CompareString(leftText, rightText)
}
