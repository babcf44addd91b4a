package history

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/oaktree/internal/status"
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
)

// Recorder wraps a UserInterface, forwarding every call unchanged and
// additionally appending a TraceEvent to the Store for each one (§4.11).
type Recorder struct {
	next   ui.UserInterface
	store  *Store
	runID  string
	logger arbor.ILogger
}

// NewRecorder returns a Recorder that forwards to next and records under
// runID.
func NewRecorder(next ui.UserInterface, store *Store, runID string, logger arbor.ILogger) *Recorder {
	return &Recorder{next: next, store: store, runID: runID, logger: logger}
}

func (r *Recorder) record(kind Kind, nodeType, nodeName, st, text string) {
	if err := r.store.Append(r.runID, kind, nodeType, nodeName, st, text); err != nil {
		r.logger.Warn().Err(err).Str("run_id", r.runID).Msg("history: failed to record trace event")
	}
}

func (r *Recorder) UpdateInstructionStatus(node ui.NodeInfo, newStatus status.ExecutionStatus) {
	r.record(KindStatus, node.TypeName, node.Name, newStatus.String(), "")
	r.next.UpdateInstructionStatus(node, newStatus)
}

func (r *Recorder) VariableUpdated(name string, v value.Value, connected bool) {
	text, _ := v.AsString()
	r.record(KindVariable, "", name, "", text)
	r.next.VariableUpdated(name, v, connected)
}

func (r *Recorder) Message(text string) {
	r.record(KindMessage, "", "", "", text)
	r.next.Message(text)
}

func (r *Recorder) Log(severity ui.Severity, text string) {
	r.record(KindLog, "", "", string(severity), text)
	r.next.Log(severity, text)
}

func (r *Recorder) RequestInput(description string) ui.Future[value.Value] {
	return r.next.RequestInput(description)
}

func (r *Recorder) RequestConfirmation(description, okText, cancelText string) ui.Future[ui.Confirmation] {
	return r.next.RequestConfirmation(description, okText, cancelText)
}

func (r *Recorder) RequestChoice(description string, optionCount int) ui.Future[int] {
	return r.next.RequestChoice(description, optionCount)
}

var _ ui.UserInterface = (*Recorder)(nil)
