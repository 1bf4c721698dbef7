package combat

// Category classifies a narrative message for the log sink.
type Category string

// Narrative message categories.
const (
	CategoryTurnStart Category = "turn-start"
	CategoryHit       Category = "hit"
	CategoryMiss      Category = "miss"
	CategoryCritical  Category = "critical"
	CategorySpell     Category = "spell"
	CategorySpellHit  Category = "spell-hit"
	CategoryHealing   Category = "healing"
	CategorySupport   Category = "support"
	CategoryError     Category = "error"
	CategoryInfo      Category = "info"
	CategoryVictory   Category = "victory"
	CategoryDefeat    Category = "defeat"
)

// Message is one narrative log entry.
type Message struct {
	Text     string
	Category Category
}

// Sink accepts append-only narrative messages. Implemented by the in-memory
// Log and by external presentation collaborators.
type Sink interface {
	Append(m Message)
}

// Log is the in-memory append-only narrative log attached to a combat state.
// It is not safe for concurrent use; the orchestrator serialises access.
type Log struct {
	messages []Message
}

// NewLog creates an empty narrative log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a message to the end of the log.
func (l *Log) Append(m Message) {
	l.messages = append(l.messages, m)
}

// Messages returns a copy of the accumulated messages in append order.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of accumulated messages.
func (l *Log) Len() int { return len(l.messages) }

// multiSink fans Append out to several sinks.
type multiSink []Sink

func (m multiSink) Append(msg Message) {
	for _, s := range m {
		s.Append(msg)
	}
}

// MultiSink combines sinks into one; nil entries are skipped.
func MultiSink(sinks ...Sink) Sink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}
