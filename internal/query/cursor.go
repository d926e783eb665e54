package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/hookdeck/dwn-go/internal/dwnerrors"
	"github.com/hookdeck/dwn-go/internal/filter"
)

// cursorVersion is bumped whenever filter.Cursor's wire shape changes in a
// way that would make an older opaque cursor string undecodable.
const cursorVersion = 1

// Cursor resource scopes, one per message interface a paginated query can be
// issued against. Mixing a RecordsQuery cursor into a MessagesQuery request
// (or vice versa) fails decoding instead of silently resuming the wrong scan.
const (
	ResourceRecordsQuery  = "rec"
	ResourceMessagesQuery = "msg"
)

var errInvalidCursorString = errors.New("query: invalid cursor")

// EncodeCursor renders a filter.Cursor as the opaque, versioned, resource-
// scoped string handed back to callers across the public API.
func EncodeCursor(resource string, c filter.Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("query: encode cursor: %w", err)
	}
	return encodeCursorString(resource, cursorVersion, string(data)), nil
}

// DecodeCursor parses an opaque cursor string previously returned for the
// same resource.
func DecodeCursor(resource, encoded string) (filter.Cursor, error) {
	raw, err := decodeCursorString(encoded, resource, cursorVersion)
	if err != nil {
		return filter.Cursor{}, dwnerrors.ErrInvalidCursor
	}
	if raw == "" {
		return filter.Cursor{}, nil
	}
	var c filter.Cursor
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return filter.Cursor{}, dwnerrors.ErrInvalidCursor
	}
	return c, nil
}

// encodeCursorString packs resource, version and data into a single base62
// token: "{resource}v{version:02d}:{data}", base62-encoded so the result is
// opaque and URL-safe without further escaping.
func encodeCursorString(resource string, version int, data string) string {
	raw := fmt.Sprintf("%sv%02d:%s", resource, version, data)
	return base62Encode(raw)
}

// decodeCursorString is the inverse of encodeCursorString. It returns
// errInvalidCursorString wrapped with the expected version if the token
// decodes to the right resource but a different version, and
// errInvalidCursorString alone for anything else malformed.
func decodeCursorString(encoded, resource string, version int) (string, error) {
	if encoded == "" {
		return "", nil
	}

	raw, err := base62Decode(encoded)
	if err != nil {
		return "", err
	}

	expectedPrefix := fmt.Sprintf("%sv%02d:", resource, version)
	if strings.HasPrefix(raw, expectedPrefix) {
		return raw[len(expectedPrefix):], nil
	}

	if strings.HasPrefix(raw, resource+"v") {
		return "", fmt.Errorf("%w: expected version %02d", errInvalidCursorString, version)
	}
	return "", errInvalidCursorString
}

func base62Encode(s string) string {
	if s == "" {
		return ""
	}
	num := new(big.Int)
	num.SetBytes([]byte(s))
	return num.Text(62)
}

func base62Decode(s string) (string, error) {
	if s == "" {
		return "", nil
	}
	num := new(big.Int)
	num, ok := num.SetString(s, 62)
	if !ok {
		return "", errInvalidCursorString
	}
	return string(num.Bytes()), nil
}
