package dialogue

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/m3rciful/intakebot/intake/session"
)

// ErrTransition reports a move the dialogue graph does not declare.
var ErrTransition = errors.New("dialogue: undeclared transition")

func states(ss ...session.State) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func event(dst session.State, src ...session.State) fsm.EventDesc {
	return fsm.EventDesc{Name: "to_" + string(dst), Src: states(src...), Dst: string(dst)}
}

var questionStates = []session.State{
	session.StateObjectTypeSelect,
	session.StateCustomObjectType,
	session.StateAreaInput,
	session.StateCategoryField,
	session.StateFlagPrompt,
}

var allStates = []session.State{
	session.StateIdle,
	session.StateServiceSelect,
	session.StateSubCategorySelect,
	session.StateObjectTypeSelect,
	session.StateCustomObjectType,
	session.StateAreaInput,
	session.StateCategoryField,
	session.StateFlagPrompt,
	session.StateAttachments,
	session.StateUrgencySelect,
	session.StatePriceConfirmation,
}

// graph lists every allowed move. Cancel and submit lead to idle from anywhere.
var graph = func() fsm.Events {
	entry := []session.State{session.StateServiceSelect, session.StateSubCategorySelect}
	intoQuestion := append(append([]session.State(nil), entry...), questionStates...)
	return fsm.Events{
		event(session.StateIdle, allStates...),
		event(session.StateServiceSelect, session.StateIdle),
		event(session.StateSubCategorySelect, session.StateServiceSelect),
		event(session.StateObjectTypeSelect, intoQuestion...),
		event(session.StateCustomObjectType, session.StateObjectTypeSelect),
		event(session.StateAreaInput, intoQuestion...),
		event(session.StateCategoryField, intoQuestion...),
		event(session.StateFlagPrompt, questionStates...),
		event(session.StateAttachments, intoQuestion...),
		event(session.StateUrgencySelect, session.StateAttachments),
		event(session.StatePriceConfirmation, session.StateUrgencySelect),
	}
}()

// checkTransition validates from -> to against graph. Staying in place is allowed when declared.
func checkTransition(ctx context.Context, from, to session.State) error {
	machine := fsm.NewFSM(string(from), graph, fsm.Callbacks{})
	err := machine.Event(ctx, "to_"+string(to))
	var same fsm.NoTransitionError
	if err == nil || errors.As(err, &same) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s: %v", ErrTransition, from, to, err)
}
