package obs

import (
	"context"
	"strings"
)

type Scene struct {
	SceneIndex int    `json:"sceneIndex"`
	SceneName  string `json:"sceneName"`
}

type SceneItem struct {
	SceneItemID      int    `json:"sceneItemId"`
	SourceName       string `json:"sourceName"`
	SceneItemEnabled bool   `json:"sceneItemEnabled"`
}

type Input struct {
	InputName            string `json:"inputName"`
	InputKind            string `json:"inputKind"`
	UnversionedInputKind string `json:"unversionedInputKind"`
}

// GetSceneList returns the scenes in the order OBS reports them.
func (c *Client) GetSceneList(ctx context.Context) ([]Scene, error) {
	var resp struct {
		CurrentProgramSceneName string  `json:"currentProgramSceneName"`
		Scenes                  []Scene `json:"scenes"`
	}
	if err := c.call(ctx, "GetSceneList", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Scenes, nil
}

func (c *Client) GetSceneItemList(ctx context.Context, sceneName string) ([]SceneItem, error) {
	var resp struct {
		SceneItems []SceneItem `json:"sceneItems"`
	}
	req := map[string]interface{}{"sceneName": sceneName}
	if err := c.call(ctx, "GetSceneItemList", req, &resp); err != nil {
		return nil, err
	}
	return resp.SceneItems, nil
}

func (c *Client) GetInputList(ctx context.Context) ([]Input, error) {
	var resp struct {
		Inputs []Input `json:"inputs"`
	}
	if err := c.call(ctx, "GetInputList", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Inputs, nil
}

func (c *Client) GetHotkeyList(ctx context.Context) ([]string, error) {
	var resp struct {
		Hotkeys []string `json:"hotkeys"`
	}
	if err := c.call(ctx, "GetHotkeyList", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Hotkeys, nil
}

func (c *Client) SetCurrentProgramScene(ctx context.Context, sceneName string) error {
	return c.call(ctx, "SetCurrentProgramScene", map[string]interface{}{
		"sceneName": sceneName,
	}, nil)
}

func (c *Client) SetSceneItemEnabled(ctx context.Context, sceneName string, itemID int, enabled bool) error {
	return c.call(ctx, "SetSceneItemEnabled", map[string]interface{}{
		"sceneName":        sceneName,
		"sceneItemId":      itemID,
		"sceneItemEnabled": enabled,
	}, nil)
}

func (c *Client) SetInputMute(ctx context.Context, inputName string, muted bool) error {
	return c.call(ctx, "SetInputMute", map[string]interface{}{
		"inputName":  inputName,
		"inputMuted": muted,
	}, nil)
}

func (c *Client) TriggerHotkeyByName(ctx context.Context, hotkeyName string) error {
	return c.call(ctx, "TriggerHotkeyByName", map[string]interface{}{
		"hotkeyName": hotkeyName,
	}, nil)
}

// FilterAudioInputs keeps inputs whose kind names an audio input or
// output capture.
func FilterAudioInputs(inputs []Input) []Input {
	var audio []Input
	for _, in := range inputs {
		if strings.Contains(in.InputKind, "input") || strings.Contains(in.InputKind, "output") {
			audio = append(audio, in)
		}
	}
	return audio
}
