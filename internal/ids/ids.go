// Package ids generates find and media identifiers.
//
// A find id looks like FIND-1714659973123-3F9A1C and a media id like
// M-1714659973123-9c04e2: a millisecond timestamp plus six random hex
// characters. The timestamp keeps ids roughly sortable; the random tail
// makes collisions within one millisecond unlikely.
package ids

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	findPrefix  = "FIND"
	mediaPrefix = "M"

	randHexLength = 6
	maxAttempts   = 20
)

// NewFindID returns a fresh find id, retrying on collisions reported by
// the exists function. exists may be nil when the caller has no store to
// consult.
func NewFindID(now time.Time, exists func(string) (bool, error)) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		tail, err := randomHex(randHexLength)
		if err != nil {
			return "", err
		}
		id := fmt.Sprintf("%s-%d-%s", findPrefix, now.UnixMilli(), strings.ToUpper(tail))
		if exists == nil {
			return id, nil
		}
		ok, err := exists(id)
		if err != nil {
			return "", err
		}
		if !ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("unable to generate unique find id")
}

// NewMediaID returns a fresh media id. Media ids are only ever generated
// by staging, so no collision check is needed.
func NewMediaID(now time.Time) (string, error) {
	tail, err := randomHex(randHexLength)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d-%s", mediaPrefix, now.UnixMilli(), tail), nil
}

func randomHex(length int) (string, error) {
	b := make([]byte, (length+1)/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b)[:length], nil
}
