package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ActionType is the stored tag of an action. The ordinals are part of the
// file format.
type ActionType int

const (
	ActionSwitchScene ActionType = iota
	ActionEnableItem
	ActionDisableItem
	ActionToggleInputMute
	ActionMuteInput
	ActionUnmuteInput
	ActionTriggerHotkey
)

var actionTypeNames = [...]string{
	ActionSwitchScene:     "SwitchScene",
	ActionEnableItem:      "EnableItem",
	ActionDisableItem:     "DisableItem",
	ActionToggleInputMute: "ToggleInput",
	ActionMuteInput:       "MuteInput",
	ActionUnmuteInput:     "UnmuteInput",
	ActionTriggerHotkey:   "TriggerHotkey",
}

// ActionTypes lists every variant in ordinal order.
func ActionTypes() []ActionType {
	types := make([]ActionType, len(actionTypeNames))
	for i := range actionTypeNames {
		types[i] = ActionType(i)
	}
	return types
}

func (t ActionType) String() string {
	if t >= 0 && int(t) < len(actionTypeNames) {
		return actionTypeNames[t]
	}
	return fmt.Sprintf("ActionType(%d)", int(t))
}

// ParseActionType accepts a tag name (case-insensitive) or its ordinal.
func ParseActionType(tag string) (ActionType, bool) {
	tag = strings.TrimSpace(tag)
	for i, name := range actionTypeNames {
		if strings.EqualFold(name, tag) {
			return ActionType(i), true
		}
	}
	if n, err := strconv.Atoi(tag); err == nil && n >= 0 && n < len(actionTypeNames) {
		return ActionType(n), true
	}
	return 0, false
}

// Tag holds a stored action tag as found on disk: a name or an ordinal.
// It is resolved by DecodeAction, so an unknown tag fails there rather
// than during JSON parsing.
type Tag string

func (t *Tag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Tag(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("action type must be a string or a number, got %s", data)
	}
	*t = Tag(n.String())
	return nil
}

// Parameters is the named parameter bag of a stored action.
type Parameters map[string]string

// UnmarshalJSON accepts string, number and boolean values. Any other
// value is kept as raw JSON text so it fails as malformed when read.
func (p *Parameters) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Parameters, len(raw))
	for name, value := range raw {
		value = bytes.TrimSpace(value)
		switch {
		case bytes.Equal(value, []byte("null")):
			continue
		case len(value) > 0 && value[0] == '"':
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("parameter %s: %w", name, err)
			}
			out[name] = s
		default:
			out[name] = string(value)
		}
	}
	*p = out
	return nil
}

// SerializedAction is the stored representation of an Action.
type SerializedAction struct {
	Type       Tag        `json:"type"`
	Parameters Parameters `json:"parameters"`
}

// ErrDecode matches every error returned by DecodeAction.
var ErrDecode = errors.New("cannot decode action")

type UnknownTagError struct {
	Tag Tag
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown action type %q", string(e.Tag))
}

func (e *UnknownTagError) Is(target error) bool { return target == ErrDecode }

type MissingParameterError struct {
	Type ActionType
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: missing parameter %s", e.Type, e.Name)
}

func (e *MissingParameterError) Is(target error) bool { return target == ErrDecode }

type MalformedParameterError struct {
	Type  ActionType
	Name  string
	Value string
}

func (e *MalformedParameterError) Error() string {
	return fmt.Sprintf("%s: malformed parameter %s=%q", e.Type, e.Name, e.Value)
}

func (e *MalformedParameterError) Is(target error) bool { return target == ErrDecode }

// EncodeAction converts an action to its stored form.
func EncodeAction(a Action) SerializedAction {
	return SerializedAction{
		Type:       Tag(a.Type().String()),
		Parameters: a.parameters(),
	}
}

// DecodeAction rebuilds an action from its stored form. A decoded
// ToggleInputMute always starts unmuted.
func DecodeAction(s SerializedAction) (Action, error) {
	t, ok := ParseActionType(string(s.Type))
	if !ok {
		return nil, &UnknownTagError{Tag: s.Type}
	}

	r := paramReader{typ: t, params: s.Parameters}
	var a Action
	switch t {
	case ActionSwitchScene:
		a = SwitchScene{SceneName: r.str(ParamSceneName)}
	case ActionEnableItem:
		a = EnableItem{
			SceneName: r.str(ParamSceneName),
			ItemID:    r.number(ParamItemID),
			ItemName:  r.str(ParamItemName),
		}
	case ActionDisableItem:
		a = DisableItem{
			SceneName: r.str(ParamSceneName),
			ItemID:    r.number(ParamItemID),
			ItemName:  r.str(ParamItemName),
		}
	case ActionToggleInputMute:
		a = NewToggleInputMute(r.str(ParamInputName))
	case ActionMuteInput:
		a = MuteInput{InputName: r.str(ParamInputName)}
	case ActionUnmuteInput:
		a = UnmuteInput{InputName: r.str(ParamInputName)}
	case ActionTriggerHotkey:
		a = TriggerHotkey{Hotkey: r.str(ParamHotkey)}
	default:
		return nil, &UnknownTagError{Tag: s.Type}
	}

	if r.err != nil {
		return nil, r.err
	}
	return a, nil
}

// paramReader keeps the first lookup error so decoders read parameters
// in a straight line.
type paramReader struct {
	typ    ActionType
	params Parameters
	err    error
}

func (r *paramReader) str(name string) string {
	if r.err != nil {
		return ""
	}
	if v, ok := r.params[name]; ok {
		return v
	}
	for k, v := range r.params {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	r.err = &MissingParameterError{Type: r.typ, Name: name}
	return ""
}

func (r *paramReader) number(name string) int {
	s := r.str(name)
	if r.err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		r.err = &MalformedParameterError{Type: r.typ, Name: name, Value: s}
		return 0
	}
	return n
}
