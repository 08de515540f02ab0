package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

// Cursor marks the last journal entry of a page. Listings are ordered newest first,
// so the next page starts strictly after (Date, Sequence) in that order.
type Cursor struct {
	Date     time.Time
	Sequence int64
}

// EncodeCursor creates an opaque token from a journal date and sequence.
func EncodeCursor(date time.Time, sequence int64) string {
	tokenStr := fmt.Sprintf("%s|%d", date.Format(dateFormat), sequence)
	return base64.RawURLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(token string) (Cursor, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	date, err := time.Parse(dateFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}

	sequence, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (sequence parse): %w", err)
	}

	return Cursor{Date: date, Sequence: sequence}, nil
}

// After reports whether an entry at (date, sequence) sorts after the cursor in newest-first order.
func (c Cursor) After(date time.Time, sequence int64) bool {
	d := date.Format(dateFormat)
	cd := c.Date.Format(dateFormat)
	if d != cd {
		return d < cd
	}
	return sequence < c.Sequence
}
