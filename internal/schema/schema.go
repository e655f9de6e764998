package schema

import "time"

// SchemaVersion is the current record schema version.
const SchemaVersion uint16 = 1

// EventType identifies the pipeline stage that produced a record. Its
// String form doubles as the stage name used by metrics and sinks.
type EventType uint16

const (
	EventUnknown EventType = iota
	EventPrice
	EventOrderBook
	EventPriceStream
	EventExecution
	EventTrade
	EventPosition
	EventRisk
	EventInquiry
	EventAlgoStream
	EventAlgoExecution
)

var eventNames = [...]string{
	EventUnknown:       "unknown",
	EventPrice:         "price",
	EventOrderBook:     "orderbook",
	EventPriceStream:   "streaming",
	EventExecution:     "execution",
	EventTrade:         "trade",
	EventPosition:      "position",
	EventRisk:          "risk",
	EventInquiry:       "inquiry",
	EventAlgoStream:    "algostreaming",
	EventAlgoExecution: "algoexecution",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return eventNames[EventUnknown]
}

// ParseEventType is the inverse of EventType.String.
func ParseEventType(name string) (EventType, bool) {
	for i, n := range eventNames {
		if n == name && i != int(EventUnknown) {
			return EventType(i), true
		}
	}
	return EventUnknown, false
}

// EventHeader is the metadata attached to every persisted record.
type EventHeader struct {
	Type    EventType
	Version uint16
	Seq     uint64
	TsEvent int64
}

// NewHeader builds a header with the current schema version.
func NewHeader(eventType EventType, seq uint64, tsEvent int64) EventHeader {
	return EventHeader{
		Type:    eventType,
		Version: SchemaVersion,
		Seq:     seq,
		TsEvent: tsEvent,
	}
}

// Time returns the event timestamp.
func (h EventHeader) Time() time.Time {
	return time.Unix(0, h.TsEvent).UTC()
}

// Recordable is implemented by every entity that flows to the historical sinks.
type Recordable interface {
	// PersistKey is the key the historical store keeps the latest value under.
	PersistKey() string
	// ToRecord flattens the entity into an ordered field list.
	ToRecord() []string
}
