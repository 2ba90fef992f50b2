package relay

import (
	"encoding/json"

	"github.com/coursehub/coursehub-backend/internal/model"
)

// Message is the JSON frame pushed to a client when a video asset changes
// state. It is a closed union: the only shapes on the wire are the ones the
// constructors below produce. Immutable once constructed.
type Message struct {
	VideoID                 string                 `json:"videoId"`
	Status                  model.VideoProgress    `json:"status"`
	VideoResolutions        model.VideoResolutions `json:"videoResolutions,omitempty"`
	EstimatedProcessingTime int64                  `json:"estimatedProcessingTime,omitempty"`
}

// NewProcessingMessage announces that transcoding has started.
// estimatedSeconds may be zero when no estimate is available.
func NewProcessingMessage(videoID string, estimatedSeconds int64) Message {
	return Message{
		VideoID:                 videoID,
		Status:                  model.VideoProcessing,
		EstimatedProcessingTime: estimatedSeconds,
	}
}

// NewCompletedMessage carries the final output descriptor.
func NewCompletedMessage(videoID string, resolutions model.VideoResolutions) Message {
	return Message{
		VideoID:          videoID,
		Status:           model.VideoCompleted,
		VideoResolutions: resolutions,
	}
}

func NewFailedMessage(videoID string) Message {
	return Message{
		VideoID: videoID,
		Status:  model.VideoFailed,
	}
}

// Encode serializes the message to its wire form.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}
