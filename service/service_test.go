package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"obsmacros/config"
	"obsmacros/models"
)

// stubRemote records remote commands and can hold or fail them.
type stubRemote struct {
	mu       sync.Mutex
	calls    []string
	err      error
	delay    time.Duration
	inFlight int
	maxSeen  int
}

func (r *stubRemote) do(call string) error {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxSeen {
		r.maxSeen = r.inFlight
	}
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight--
	r.calls = append(r.calls, call)
	return r.err
}

func (r *stubRemote) SetCurrentProgramScene(_ context.Context, scene string) error {
	return r.do("scene:" + scene)
}

func (r *stubRemote) SetSceneItemEnabled(_ context.Context, scene string, itemID int, enabled bool) error {
	return r.do(fmt.Sprintf("item:%s/%d=%t", scene, itemID, enabled))
}

func (r *stubRemote) SetInputMute(_ context.Context, input string, muted bool) error {
	return r.do(fmt.Sprintf("mute:%s=%t", input, muted))
}

func (r *stubRemote) TriggerHotkeyByName(_ context.Context, hotkey string) error {
	return r.do("hotkey:" + hotkey)
}

func (r *stubRemote) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type memoryRecorder struct {
	mu   sync.Mutex
	list []models.Invocation
}

func (m *memoryRecorder) Record(_ context.Context, inv *models.Invocation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append(m.list, *inv)
	return nil
}

type memoryBroadcaster struct {
	mu       sync.Mutex
	messages []interface{}
}

func (m *memoryBroadcaster) BroadcastToAll(message interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
}

func newTestService(path string) *MacroService {
	return NewMacroService(config.New(), path)
}
