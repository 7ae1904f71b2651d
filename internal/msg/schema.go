package msg

import (
	"time"

	"github.com/google/uuid"
	"github.com/ratesdesk/execfeed/internal/synth"
)

// ExecutionMsg is the wire envelope for one execution row on the feed
// topic. The record index doubles as the partition key so consumers see
// rows in generation order.
type ExecutionMsg struct {
	EventID      string                `json:"event_id"`
	TsUnixMillis int64                 `json:"ts_unix_millis"`
	Record       synth.ExecutionRecord `json:"record"`
}

// NewExecutionMsg wraps a record in a fresh envelope.
func NewExecutionMsg(rec synth.ExecutionRecord) ExecutionMsg {
	return ExecutionMsg{
		EventID:      uuid.New().String(),
		TsUnixMillis: time.Now().UnixMilli(),
		Record:       rec,
	}
}
