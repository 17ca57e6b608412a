package events

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CursorKey is the ordering key (updated_at DESC, id DESC) a page continues
// after.
type CursorKey struct {
	UpdatedAt time.Time
	ID        int64
}

// encodeCursor packs an ordering key into an opaque page token:
// base64("<unix-nanos>:<id>").
func encodeCursor(key CursorKey) string {
	raw := fmt.Sprintf("%d:%d", key.UpdatedAt.UnixNano(), key.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// decodeCursor unpacks a page token. Malformed input of any kind reports
// ok=false rather than an error: a corrupt or foreign cursor degrades to an
// unfiltered first page.
func decodeCursor(cursor string) (CursorKey, bool) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return CursorKey{}, false
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return CursorKey{}, false
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return CursorKey{}, false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return CursorKey{}, false
	}
	return CursorKey{UpdatedAt: time.Unix(0, nanos).UTC(), ID: id}, true
}
