package models

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// recordingRemote captures the commands issued against it.
type recordingRemote struct {
	calls []string
	err   error
}

func (r *recordingRemote) SetCurrentProgramScene(_ context.Context, scene string) error {
	r.calls = append(r.calls, "scene:"+scene)
	return r.err
}

func (r *recordingRemote) SetSceneItemEnabled(_ context.Context, scene string, itemID int, enabled bool) error {
	r.calls = append(r.calls, fmt.Sprintf("item:%s/%d=%t", scene, itemID, enabled))
	return r.err
}

func (r *recordingRemote) SetInputMute(_ context.Context, input string, muted bool) error {
	r.calls = append(r.calls, fmt.Sprintf("mute:%s=%t", input, muted))
	return r.err
}

func (r *recordingRemote) TriggerHotkeyByName(_ context.Context, hotkey string) error {
	r.calls = append(r.calls, "hotkey:"+hotkey)
	return r.err
}

func TestActionInvoke(t *testing.T) {
	tests := []struct {
		action   Action
		wantCall string
		wantDesc string
	}{
		{SwitchScene{SceneName: "Live"}, "scene:Live", "Switch to Scene: Live"},
		{EnableItem{SceneName: "Live", ItemID: 4, ItemName: "Cam"}, "item:Live/4=true", "Enable Cam in Live"},
		{DisableItem{SceneName: "Live", ItemID: 4, ItemName: "Cam"}, "item:Live/4=false", "Disable Cam in Live"},
		{NewToggleInputMute("Mic"), "mute:Mic=true", "Toggle Mic"},
		{MuteInput{InputName: "Mic"}, "mute:Mic=true", "Mute Mic"},
		{UnmuteInput{InputName: "Mic"}, "mute:Mic=false", "Unmute Mic"},
		{TriggerHotkey{Hotkey: "OBSBasic.StartRecording"}, "hotkey:OBSBasic.StartRecording", "Trigger Hotkey: OBSBasic.StartRecording"},
	}

	for _, tt := range tests {
		t.Run(tt.action.Type().String(), func(t *testing.T) {
			remote := &recordingRemote{}
			if err := tt.action.Invoke(context.Background(), remote); err != nil {
				t.Fatalf("Invoke() error: %v", err)
			}
			if len(remote.calls) != 1 || remote.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%s]", remote.calls, tt.wantCall)
			}
			if got := tt.action.Describe(); got != tt.wantDesc {
				t.Errorf("Describe() = %q, want %q", got, tt.wantDesc)
			}
			if got := fmt.Sprint(tt.action); got != tt.wantDesc {
				t.Errorf("String() = %q, want %q", got, tt.wantDesc)
			}
		})
	}
}

func TestActionInvokeIsRepeatable(t *testing.T) {
	remote := &recordingRemote{}
	action := MuteInput{InputName: "Mic"}
	for i := 0; i < 3; i++ {
		if err := action.Invoke(context.Background(), remote); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range remote.calls {
		if c != "mute:Mic=true" {
			t.Errorf("unexpected call %s", c)
		}
	}
}

func TestToggleInputMuteAlternates(t *testing.T) {
	remote := &recordingRemote{}
	toggle := NewToggleInputMute("Mic")
	if toggle.Muted() {
		t.Fatal("toggle should start unmuted")
	}

	for i := 0; i < 4; i++ {
		if err := toggle.Invoke(context.Background(), remote); err != nil {
			t.Fatal(err)
		}
	}

	want := []string{"mute:Mic=true", "mute:Mic=false", "mute:Mic=true", "mute:Mic=false"}
	for i := range want {
		if remote.calls[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, remote.calls[i], want[i])
		}
	}
}

func TestToggleFlipsBeforeRemoteFailure(t *testing.T) {
	remoteErr := errors.New("remote down")
	remote := &recordingRemote{err: remoteErr}
	toggle := NewToggleInputMute("Mic")

	err := toggle.Invoke(context.Background(), remote)
	if err != remoteErr {
		t.Fatalf("Invoke() error = %v, want the remote error unchanged", err)
	}
	if !toggle.Muted() {
		t.Error("state should flip even when the remote call fails")
	}
}
