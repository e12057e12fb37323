// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package transaction drives MULTI/EXEC/WATCH optimistic-concurrency
// transactions atop a single connection.Conn.
package transaction

import (
	"context"

	"github.com/pkg/errors"

	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/resp"
)

// ErrAborted means EXEC returned a null reply because a watched key was
// modified between WATCH and EXEC .
var ErrAborted = errors.New("transaction: aborted by a watched key mutation")

// QueueingError is one queued command's simple-error reply, observed
// between MULTI and EXEC.
type QueueingError struct {
	// Index is the command's position in the Exec call's cmds slice.
	Index int
	Err error
}

// ErrorsError is surfaced when one or more commands failed to queue;
// it carries every queued command's reply so the caller can see which
// ones succeeded.
type ErrorsError struct {
	QueuedResults []*resp.Frame
	Queueing []QueueingError
}

func (e *ErrorsError) Error() string {
	return "transaction: one or more commands failed to queue"
}

// Pipeliner is the subset of connection.Conn a transaction runs over.
type Pipeliner interface {
	Pipeline(ctx context.Context, cmds []command.Command) ([]*resp.Frame, error)
}

// Exec runs cmds as one MULTI/EXEC transaction, pipelined onto conn as
// a single batched write : MULTI, then each command, then
// EXEC. If any command failed to queue, Exec issues DISCARD to close
// out the (already server-aborted) transaction and returns *ErrorsError
// naming every queued reply. If EXEC itself returned a null reply (a
// watched key changed), Exec returns ErrAborted. Otherwise it returns
// one reply per command, in order.
func Exec(ctx context.Context, conn Pipeliner, cmds ...command.Command) ([]*resp.Frame, error) {
	batch := make([]command.Command, 0, len(cmds)+2)
	batch = append(batch, command.Multi())
	batch = append(batch, cmds...)
	batch = append(batch, command.Exec())

	frames, err := conn.Pipeline(ctx, batch)
	if err != nil {
		return nil, errors.Wrap(err, "transaction: pipeline")
	}

	queuedResults := frames[1 : len(frames)-1]
	var queueing []QueueingError
	for i, f := range queuedResults {
		if f == nil {
			continue
		}
		if qerr := command.AsError(f); qerr != nil {
			queueing = append(queueing, QueueingError{Index: i, Err: qerr})
		}
	}
	if len(queueing) > 0 {
		_, _ = conn.Pipeline(ctx, []command.Command{command.Discard()})
		return nil, &ErrorsError{QueuedResults: queuedResults, Queueing: queueing}
	}

	execReply := frames[len(frames)-1]
	if execReply == nil || execReply.IsNull {
		return nil, ErrAborted
	}
	if qerr := command.AsError(execReply); qerr != nil {
		return nil, errors.Wrap(qerr, "transaction: EXEC")
	}

	results := make([]*resp.Frame, len(execReply.Elements))
	for i := range execReply.Elements {
		results[i] = &execReply.Elements[i]
	}
	return results, nil
}

// Watch arms optimistic locking on keys for the next Exec on this
// connection.
func Watch(ctx context.Context, conn Pipeliner, keys ...string) error {
	frames, err := conn.Pipeline(ctx, []command.Command{command.Watch(keys...)})
	if err != nil {
		return errors.Wrap(err, "transaction: WATCH")
	}
	return command.AsOK(frames[0])
}

// Unwatch flushes every key armed by a prior Watch on this connection.
func Unwatch(ctx context.Context, conn Pipeliner) error {
	frames, err := conn.Pipeline(ctx, []command.Command{command.Unwatch()})
	if err != nil {
		return errors.Wrap(err, "transaction: UNWATCH")
	}
	return command.AsOK(frames[0])
}
