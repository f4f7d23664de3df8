package game

import "fmt"

// Action is a voluntary betting action a player can take
type Action string

// valid actions
const (
	ActionCheck Action = "check"
	ActionCall  Action = "call"
	ActionFold  Action = "fold"
	ActionRaise Action = "raise"
)

// ActionFromString parses a client-supplied action name
func ActionFromString(s string) (Action, error) {
	switch Action(s) {
	case ActionCheck, ActionCall, ActionFold, ActionRaise:
		return Action(s), nil
	}

	return "", fmt.Errorf("%s is not a valid action", s)
}
