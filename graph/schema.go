package graph

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/tmc/langchaingo/llms"
)

// Reducer defines how a state value should be updated.
// It takes the current value and the new value, and returns the merged value.
type Reducer func(current, update any) (any, error)

// Schema merges partial updates into a State using per-key reducers.
// The messages key always uses AddMessages; keys without a reducer are
// overwritten.
type Schema struct {
	reducers map[string]Reducer
}

// NewSchema creates a schema with the messages reducer registered.
func NewSchema() *Schema {
	return &Schema{
		reducers: map[string]Reducer{MessagesKey: AddMessages},
	}
}

// RegisterReducer sets the reducer for a key. The messages reducer cannot be replaced.
func (s *Schema) RegisterReducer(key string, reducer Reducer) error {
	if key == MessagesKey {
		return fmt.Errorf("reducer for %q is fixed", MessagesKey)
	}
	if reducer == nil {
		delete(s.reducers, key)
		return nil
	}
	s.reducers[key] = reducer
	return nil
}

// Update merges update into current and returns a new state. Neither input is modified.
func (s *Schema) Update(current, update State) (State, error) {
	result := make(State, len(current)+len(update))
	maps.Copy(result, current)

	for _, k := range sortedKeys(update) {
		v := update[k]
		reducer, ok := s.reducers[k]
		if !ok {
			reducer = OverwriteReducer
		}
		merged, err := reducer(result[k], v)
		if err != nil {
			return nil, fmt.Errorf("failed to reduce key %s: %w", k, err)
		}
		result[k] = merged
	}

	return result, nil
}

func (s *Schema) clone() *Schema {
	return &Schema{reducers: maps.Clone(s.reducers)}
}

// Merge merges update into s using the default schema (messages appended,
// everything else replaced).
func (s State) Merge(update State) (State, error) {
	return NewSchema().Update(s, update)
}

// OverwriteReducer replaces the old value with the new one.
func OverwriteReducer(_, update any) (any, error) {
	return update, nil
}

// AddMessages concatenates new messages to the end of the log. It accepts a
// []llms.MessageContent or a single llms.MessageContent and always returns a
// fresh slice, so earlier states never observe later appends.
func AddMessages(current, update any) (any, error) {
	var cur []llms.MessageContent
	if current != nil {
		c, ok := current.([]llms.MessageContent)
		if !ok {
			return nil, fmt.Errorf("current messages have type %T", current)
		}
		cur = c
	}

	switch u := update.(type) {
	case nil:
		return slices.Clone(cur), nil
	case []llms.MessageContent:
		return slices.Concat(cur, u), nil
	case llms.MessageContent:
		return slices.Concat(cur, []llms.MessageContent{u}), nil
	default:
		return nil, fmt.Errorf("messages update has type %T", update)
	}
}

// AppendReducer appends the new value to the current slice.
// It supports appending a slice to a slice, or a single element to a slice.
func AppendReducer(current, update any) (any, error) {
	newVal := reflect.ValueOf(update)
	if current == nil {
		if newVal.Kind() == reflect.Slice {
			return update, nil
		}
		slice := reflect.MakeSlice(reflect.SliceOf(newVal.Type()), 0, 1)
		return reflect.Append(slice, newVal).Interface(), nil
	}

	currVal := reflect.ValueOf(current)
	if currVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("current value is not a slice")
	}

	extra := 1
	if newVal.Kind() == reflect.Slice {
		extra = newVal.Len()
	}

	if newVal.Kind() == reflect.Slice && currVal.Type().Elem() != newVal.Type().Elem() {
		// Types don't match, convert both to []any
		result := make([]any, 0, currVal.Len()+extra)
		for i := 0; i < currVal.Len(); i++ {
			result = append(result, currVal.Index(i).Interface())
		}
		for i := 0; i < newVal.Len(); i++ {
			result = append(result, newVal.Index(i).Interface())
		}
		return result, nil
	}

	// Copy first so the caller's backing array is never shared.
	out := reflect.MakeSlice(currVal.Type(), 0, currVal.Len()+extra)
	out = reflect.AppendSlice(out, currVal)
	if newVal.Kind() == reflect.Slice {
		return reflect.AppendSlice(out, newVal).Interface(), nil
	}
	if !newVal.Type().AssignableTo(currVal.Type().Elem()) {
		return nil, fmt.Errorf("cannot append %s to %s", newVal.Type(), currVal.Type())
	}
	return reflect.Append(out, newVal).Interface(), nil
}
