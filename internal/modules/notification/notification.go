package notification

import "context"

// Kind tags a request so dispatch logs stay greppable per audience.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindStaff    Kind = "staff"
)

// Request is the declarative side-effect a state transition emits.
// Building one never touches the network; sending is the dispatcher's
// problem so an email outage cannot corrupt payment state.
type Request struct {
	Kind       Kind                   `json:"kind"`
	To         string                 `json:"to"`
	TemplateID string                 `json:"template_id"`
	Data       map[string]interface{} `json:"data"`
}

type Sender interface {
	Send(ctx context.Context, req Request) error
}

// Dispatcher forwards requests to the email collaborator, logging
// failures instead of propagating them.
type Dispatcher struct {
	sender  Sender
	loggerf func(format string, args ...interface{})
}

func NewDispatcher(sender Sender, loggerf func(format string, args ...interface{})) *Dispatcher {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Dispatcher{sender: sender, loggerf: loggerf}
}

func (d *Dispatcher) Dispatch(ctx context.Context, reqs []Request) {
	if d.sender == nil {
		return
	}
	for _, req := range reqs {
		if req.To == "" {
			continue
		}
		if err := d.sender.Send(ctx, req); err != nil {
			d.loggerf("level=error msg=notification send failed kind=%s template=%s to=%s err=%v",
				req.Kind, req.TemplateID, req.To, err)
			continue
		}
		d.loggerf("level=info msg=notification sent kind=%s template=%s to=%s",
			req.Kind, req.TemplateID, req.To)
	}
}
