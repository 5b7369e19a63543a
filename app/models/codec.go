package models

import (
	"encoding/json"
	"fmt"
)

// MarshalItems encodes items as a pretty-printed JSON array. A nil slice
// encodes as [] so readers never see null.
func MarshalItems(items []Item) ([]byte, error) {
	if items == nil {
		items = []Item{}
	}
	return json.MarshalIndent(items, "", "  ")
}

// UnmarshalItems decodes a JSON array of records, dispatching on "type".
// Any entry with an unknown type or a bad shape fails the whole decode.
func UnmarshalItems(data []byte) ([]Item, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("models: decode items: %w", err)
	}

	items := make([]Item, 0, len(raws))
	for i, raw := range raws {
		it, err := UnmarshalItem(raw)
		if err != nil {
			return nil, fmt.Errorf("models: item %d: %w", i, err)
		}
		items = append(items, it)
	}
	return items, nil
}

// UnmarshalItem decodes one record.
func UnmarshalItem(raw []byte) (Item, error) {
	var head struct {
		Type Kind `json:"type"`
		ID   *ID  `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}
	if head.ID == nil {
		return nil, fmt.Errorf("missing id")
	}

	var it Item
	switch head.Type {
	case KindFile:
		it = &File{}
	case KindFolder:
		it = &Folder{}
	case KindTelegramCloud:
		it = &TelegramCloud{}
	default:
		return nil, fmt.Errorf("unknown item type %q", head.Type)
	}
	if err := json.Unmarshal(raw, it); err != nil {
		return nil, fmt.Errorf("%s: %w", head.Type, err)
	}
	return it, nil
}
