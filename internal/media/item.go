package media

import "tellfind/internal/models"

// Item is a media item staged in memory during a compose session.
//
// Until it is committed the item owns its payload bytes. Once durable,
// Stored is set and the payload (if still held for preview) is no longer
// needed for saving. Missing marks a stored item whose payload could not
// be rehydrated from the blob store; display degrades, nothing fails.
type Item struct {
	ID   string
	Kind models.MediaKind
	MIME string
	Name string

	Data    []byte
	Stored  bool
	Missing bool
}

// Ref returns the lightweight reference persisted inside a find record.
func (i *Item) Ref() models.MediaRef {
	return models.MediaRef{ID: i.ID, Kind: i.Kind, MIME: i.MIME, Name: i.Name}
}

// Release frees the in-memory payload. Sessions call this when they end,
// whether by save or discard.
func (i *Item) Release() {
	i.Data = nil
}
