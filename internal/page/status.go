package page

import (
	"context"

	"github.com/QuadTriangle/domlink/internal/dom"
	"github.com/QuadTriangle/domlink/internal/responder"
)

const (
	StatusConnected    = "Connected"
	StatusDisconnected = "Disconnected"
)

// Status writes connection transitions into the message list.
type Status struct {
	doc *dom.Document
}

func NewStatus(doc *dom.Document) *Status {
	return &Status{doc: doc}
}

func (s *Status) Connected() {
	s.AppendMessage(StatusConnected)
	if box := s.doc.Query(SelectorInput); box != nil {
		box.Focus()
	}
}

func (s *Status) Disconnected() {
	s.AppendMessage(StatusDisconnected)
}

// AppendMessage adds a text line to the message list and scrolls it.
func (s *Status) AppendMessage(text string) {
	list := s.doc.Query(SelectorMessages)
	if list == nil {
		return
	}
	msg, err := s.doc.CreateElement("div")
	if err != nil {
		return
	}
	_ = msg.SetAttr("class", "msg")
	msg.SetText(text)
	list.AppendChild(msg)
	list.ScrollToBottom()
}

// Send submits text through the message box: the box takes the value, it is
// sent, and the box is cleared.
func Send(ctx context.Context, doc *dom.Document, r *responder.Responder, text string) error {
	box := doc.Query(SelectorInput)
	if box != nil {
		_ = box.SetAttr("value", text)
	}
	err := r.Submit(ctx, text)
	if box != nil {
		_ = box.SetAttr("value", "")
	}
	return err
}
