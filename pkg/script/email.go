package script

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
)

type emailCapability struct {
	ctx    context.Context
	sender EmailSender
}

// Send is called from scripts as Emailer.Send({to: [...], subject: "..", content: "..", is_html: true})
func (e *emailCapability) Send(msg map[string]interface{}) error {
	if e.sender == nil {
		return fmt.Errorf("%w email is not configured", errors.ErrNotSupported)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	out := &EmailMessage{}
	err = json.Unmarshal(data, out)
	if err != nil {
		return fmt.Errorf("%w bad email: %v", errors.ErrInvalidArg, err)
	}
	if len(out.To) == 0 {
		return fmt.Errorf("%w email has no recipients", errors.ErrInvalidArg)
	}
	return e.sender.Send(e.ctx, out)
}
