package models

import (
	"context"
	"fmt"
	"strconv"
)

// Remote is the command layer of the studio-control service that actions
// run against.
type Remote interface {
	SetCurrentProgramScene(ctx context.Context, sceneName string) error
	SetSceneItemEnabled(ctx context.Context, sceneName string, itemID int, enabled bool) error
	SetInputMute(ctx context.Context, inputName string, muted bool) error
	TriggerHotkeyByName(ctx context.Context, hotkeyName string) error
}

// Action is one bindable remote command. The set of implementations is
// closed; Invoke issues exactly one remote command and returns the remote
// error unchanged.
type Action interface {
	Type() ActionType
	Invoke(ctx context.Context, remote Remote) error
	Describe() string

	// parameters feeds EncodeAction. Being unexported, it also keeps the
	// variant set closed to this package.
	parameters() Parameters
}

// Parameter names used in stored actions.
const (
	ParamSceneName = "SceneName"
	ParamItemID    = "ItemID"
	ParamItemName  = "ItemName"
	ParamInputName = "InputName"
	ParamHotkey    = "Hotkey"
)

type SwitchScene struct {
	SceneName string
}

func (a SwitchScene) Type() ActionType { return ActionSwitchScene }

func (a SwitchScene) Invoke(ctx context.Context, remote Remote) error {
	return remote.SetCurrentProgramScene(ctx, a.SceneName)
}

func (a SwitchScene) Describe() string { return "Switch to Scene: " + a.SceneName }
func (a SwitchScene) String() string   { return a.Describe() }

func (a SwitchScene) parameters() Parameters {
	return Parameters{ParamSceneName: a.SceneName}
}

// EnableItem shows a scene item. ItemID addresses the item; ItemName is
// kept for display only.
type EnableItem struct {
	SceneName string
	ItemID    int
	ItemName  string
}

func (a EnableItem) Type() ActionType { return ActionEnableItem }

func (a EnableItem) Invoke(ctx context.Context, remote Remote) error {
	return remote.SetSceneItemEnabled(ctx, a.SceneName, a.ItemID, true)
}

func (a EnableItem) Describe() string { return fmt.Sprintf("Enable %s in %s", a.ItemName, a.SceneName) }
func (a EnableItem) String() string   { return a.Describe() }

func (a EnableItem) parameters() Parameters {
	return Parameters{
		ParamSceneName: a.SceneName,
		ParamItemID:    strconv.Itoa(a.ItemID),
		ParamItemName:  a.ItemName,
	}
}

// DisableItem hides a scene item.
type DisableItem struct {
	SceneName string
	ItemID    int
	ItemName  string
}

func (a DisableItem) Type() ActionType { return ActionDisableItem }

func (a DisableItem) Invoke(ctx context.Context, remote Remote) error {
	return remote.SetSceneItemEnabled(ctx, a.SceneName, a.ItemID, false)
}

func (a DisableItem) Describe() string { return fmt.Sprintf("Disable %s in %s", a.ItemName, a.SceneName) }
func (a DisableItem) String() string   { return a.Describe() }

func (a DisableItem) parameters() Parameters {
	return Parameters{
		ParamSceneName: a.SceneName,
		ParamItemID:    strconv.Itoa(a.ItemID),
		ParamItemName:  a.ItemName,
	}
}

// ToggleInputMute flips the mute flag of an input. The remote has no
// toggle primitive, so the action tracks the state it last applied and
// starts unmuted. The state is not persisted.
type ToggleInputMute struct {
	InputName string
	muted     bool
}

func NewToggleInputMute(inputName string) *ToggleInputMute {
	return &ToggleInputMute{InputName: inputName}
}

func (a *ToggleInputMute) Type() ActionType { return ActionToggleInputMute }

// Invoke flips the tracked state before the remote call, so a failed call
// still leaves the state flipped.
func (a *ToggleInputMute) Invoke(ctx context.Context, remote Remote) error {
	a.muted = !a.muted
	return remote.SetInputMute(ctx, a.InputName, a.muted)
}

// Muted reports the state applied by the last Invoke.
func (a *ToggleInputMute) Muted() bool { return a.muted }

func (a *ToggleInputMute) Describe() string { return "Toggle " + a.InputName }
func (a *ToggleInputMute) String() string   { return a.Describe() }

func (a *ToggleInputMute) parameters() Parameters {
	return Parameters{ParamInputName: a.InputName}
}

type MuteInput struct {
	InputName string
}

func (a MuteInput) Type() ActionType { return ActionMuteInput }

func (a MuteInput) Invoke(ctx context.Context, remote Remote) error {
	return remote.SetInputMute(ctx, a.InputName, true)
}

func (a MuteInput) Describe() string { return "Mute " + a.InputName }
func (a MuteInput) String() string   { return a.Describe() }

func (a MuteInput) parameters() Parameters {
	return Parameters{ParamInputName: a.InputName}
}

type UnmuteInput struct {
	InputName string
}

func (a UnmuteInput) Type() ActionType { return ActionUnmuteInput }

func (a UnmuteInput) Invoke(ctx context.Context, remote Remote) error {
	return remote.SetInputMute(ctx, a.InputName, false)
}

func (a UnmuteInput) Describe() string { return "Unmute " + a.InputName }
func (a UnmuteInput) String() string   { return a.Describe() }

func (a UnmuteInput) parameters() Parameters {
	return Parameters{ParamInputName: a.InputName}
}

type TriggerHotkey struct {
	Hotkey string
}

func (a TriggerHotkey) Type() ActionType { return ActionTriggerHotkey }

func (a TriggerHotkey) Invoke(ctx context.Context, remote Remote) error {
	return remote.TriggerHotkeyByName(ctx, a.Hotkey)
}

func (a TriggerHotkey) Describe() string { return "Trigger Hotkey: " + a.Hotkey }
func (a TriggerHotkey) String() string   { return a.Describe() }

func (a TriggerHotkey) parameters() Parameters {
	return Parameters{ParamHotkey: a.Hotkey}
}
