package catalog

import (
	"fmt"

	"howett.net/plist"
)

// parsePlist decodes a property-list dictionary of name -> url strings.
func parsePlist(data []byte) ([]Entry, error) {
	var dict map[string]string
	if _, err := plist.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("decode plist: %w", err)
	}
	return fromDict(dict), nil
}
