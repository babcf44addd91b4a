package library

import (
	"github.com/ternarybob/oaktree/internal/ui"
	"github.com/ternarybob/oaktree/internal/value"
)

// promptUI is a UserInterface stub that hands back a live Promise for
// whichever prompt method is invoked, so a test can resolve it on its own
// schedule instead of racing a real asynchronous responder.
type promptUI struct {
	ui.Base
	choice  *ui.Promise[int]
	input   *ui.Promise[value.Value]
	confirm *ui.Promise[ui.Confirmation]
}

func newPromptUI() *promptUI { return &promptUI{} }

func (p *promptUI) RequestChoice(description string, optionCount int) ui.Future[int] {
	pr, f := ui.NewPromise[int]()
	p.choice = pr
	return f
}

func (p *promptUI) RequestInput(description string) ui.Future[value.Value] {
	pr, f := ui.NewPromise[value.Value]()
	p.input = pr
	return f
}

func (p *promptUI) RequestConfirmation(description, okText, cancelText string) ui.Future[ui.Confirmation] {
	pr, f := ui.NewPromise[ui.Confirmation]()
	p.confirm = pr
	return f
}
