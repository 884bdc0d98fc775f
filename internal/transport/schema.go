package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// List is a list response. It accepts a bare JSON array, {"items": [...]}
// or {"result": [...]}. A missing or null list decodes to an empty slice.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = List[T]{}
		return nil
	}

	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding list: %w", err)
		}
		*l = normalize(items)
		return nil
	}

	var env struct {
		Items  []T `json:"items"`
		Result []T `json:"result"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decoding list envelope: %w", err)
	}
	if env.Items != nil {
		*l = normalize(env.Items)
		return nil
	}
	*l = normalize(env.Result)
	return nil
}

func normalize[T any](items []T) List[T] {
	if items == nil {
		return List[T]{}
	}
	return List[T](items)
}

// DecodeList decodes raw into a list; a nil body is an empty list.
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	var l List[T]
	if err := l.UnmarshalJSON(raw); err != nil {
		return []T{}, err
	}
	return []T(l), nil
}

// Item is a single-record response: {"item": X}, {"result": X} or a bare X.
// Null or an absent wrapper value is Empty.
type Item[T any] struct {
	value T
	ok    bool
}

func (it *Item[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*it = Item[T]{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '{' {
		var env map[string]json.RawMessage
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("decoding item envelope: %w", err)
		}
		for _, key := range []string{"item", "result"} {
			inner, found := env[key]
			if !found {
				continue
			}
			inner = bytes.TrimSpace(inner)
			if bytes.Equal(inner, []byte("null")) {
				return nil
			}
			if err := json.Unmarshal(inner, &it.value); err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
			it.ok = true
			return nil
		}
	}

	if err := json.Unmarshal(data, &it.value); err != nil {
		return fmt.Errorf("decoding item: %w", err)
	}
	it.ok = true
	return nil
}

// Value returns the record and whether one was present.
func (it Item[T]) Value() (T, bool) {
	return it.value, it.ok
}

// DecodeItem decodes raw into an Item; a nil body is Empty.
func DecodeItem[T any](raw json.RawMessage) (Item[T], error) {
	var it Item[T]
	err := it.UnmarshalJSON(raw)
	return it, err
}
