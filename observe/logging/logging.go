// Package logging provides a buffer.Observer that writes structured
// lifecycle and traffic events to a logrus logger.
package logging

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/NetPo4ki/go-buffer/buffer"
)

// Observer logs lifecycle events at Info, waits at Debug, rejected
// operations at Warn and individual messages at Trace.
type Observer struct {
	l logrus.FieldLogger
}

// New returns an observer writing to l, or to the logrus standard logger if l is nil.
func New(l logrus.FieldLogger) *Observer {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return &Observer{l: l}
}

func (o *Observer) BufferCreated(capacity int) {
	o.l.WithField("capacity", capacity).Info("buffer created")
}

func (o *Observer) MessageSent(size int, wait time.Duration) {
	o.l.WithFields(logrus.Fields{"op": buffer.OpSend.String(), "size": size, "wait": wait}).Trace("message sent")
}

func (o *Observer) MessageReceived(size int, wait time.Duration, special bool) {
	o.l.WithFields(logrus.Fields{
		"op":      buffer.OpReceive.String(),
		"size":    size,
		"wait":    wait,
		"special": special,
	}).Trace("message received")
}

func (o *Observer) Blocked(op buffer.Op) {
	o.l.WithField("op", op.String()).Debug("operation waited for buffer state")
}

func (o *Observer) OperationRejected(op buffer.Op, err error) {
	o.l.WithField("op", op.String()).WithError(err).Warn("operation rejected")
}

func (o *Observer) BufferClosed() {
	o.l.Info("buffer closed")
}

func (o *Observer) BufferDestroyed(discarded int) {
	o.l.WithField("discarded", discarded).Info("buffer destroyed")
}
