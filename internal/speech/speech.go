// Package speech defines the transcription collaborator. The core treats
// recognized speech purely as text appended to a find description; the
// recognition engine lives outside this module.
package speech

import "context"

// Transcriber converts one spoken utterance into text.
type Transcriber interface {
	Transcribe(ctx context.Context) (string, error)
}
