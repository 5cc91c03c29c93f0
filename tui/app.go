package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/gdamore/tcell/v2"

	"obsmacros/models"
	"obsmacros/obs"
	"obsmacros/service"
)

// Catalog lists what a new macro can target. *obs.Client implements it.
type Catalog interface {
	GetSceneList(ctx context.Context) ([]obs.Scene, error)
	GetSceneItemList(ctx context.Context, sceneName string) ([]obs.SceneItem, error)
	GetInputList(ctx context.Context) ([]obs.Input, error)
	GetHotkeyList(ctx context.Context) ([]string, error)
}

var (
	styleHeader = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleText   = tcell.StyleDefault
	styleOK     = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleError  = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

const headerRows = 2

// connectionNotice travels through the screen's event queue so state
// changes reported by the client goroutine are drawn on the UI goroutine.
type connectionNotice obs.ConnectionState

// App is the terminal front end: a menu, macro mode and the editor that
// records keys and assigns actions.
type App struct {
	screen     tcell.Screen
	macros     *service.MacroService
	dispatcher *service.Dispatcher
	catalog    Catalog

	next func() tcell.Event

	lines  []string
	status string
	failed bool
	conn   obs.ConnectionState
	quit   bool
}

func NewApp(screen tcell.Screen, ms *service.MacroService, d *service.Dispatcher, catalog Catalog) *App {
	return &App{
		screen:     screen,
		macros:     ms,
		dispatcher: d,
		catalog:    catalog,
		next:       screen.PollEvent,
		conn:       obs.StateDisconnected,
	}
}

// SetStatus shows msg below the current view until the next key press.
func (a *App) SetStatus(msg string) {
	a.status = msg
	a.failed = false
}

// NotifyConnection is safe to call from any goroutine.
func (a *App) NotifyConnection(state obs.ConnectionState) {
	a.screen.PostEvent(tcell.NewEventInterrupt(connectionNotice(state)))
}

// Run shows the main menu until Escape, Ctrl+C or the screen closes.
func (a *App) Run(ctx context.Context) {
	for {
		a.show("m) Macro Mode", "e) Edit Mode", "s) Save", "Esc) Exit")
		ev := a.readKey()
		if ev == nil || ev.Key() == tcell.KeyEscape {
			return
		}
		switch choice(ev) {
		case 'm':
			a.macroMode(ctx)
		case 'e':
			a.editMode(ctx)
		case 's':
			a.save()
		}
	}
}

func (a *App) macroMode(ctx context.Context) {
	for {
		a.show(append(append([]string{"Macro Mode"}, a.macroLines()...), "Esc) Back")...)
		ev := a.readKey()
		if ev == nil || ev.Key() == tcell.KeyEscape {
			return
		}
		b, ok := BindingFromEvent(ev)
		if !ok {
			continue
		}

		inv, err := a.dispatcher.Trigger(ctx, b, service.SourceTerminal)
		switch {
		case errors.Is(err, service.ErrNoMacro):
		case err != nil:
			a.fail("%s: %v", b, err)
		default:
			a.ok("%s -> %s (%s)", b, inv.Description, inv.Duration())
		}
	}
}

func (a *App) editMode(ctx context.Context) {
	for {
		a.show(append(a.macroLines(), "n) New Macro", "r) Remove Macro", "Esc) Back")...)
		ev := a.readKey()
		if ev == nil || ev.Key() == tcell.KeyEscape {
			return
		}
		switch choice(ev) {
		case 'n':
			a.recordKey(ctx)
		case 'r':
			a.removeKey()
		}
	}
}

func (a *App) recordKey(ctx context.Context) {
	for {
		a.show("Press key to assign new macro:")
		ev := a.readKey()
		if ev == nil || ev.Key() == tcell.KeyEscape {
			return
		}
		b, ok := BindingFromEvent(ev)
		if !ok {
			a.fail("Key %s cannot be bound", ev.Name())
			continue
		}
		if a.assignAction(ctx, b) {
			return
		}
	}
}

// assignAction reports whether a macro was bound to b.
func (a *App) assignAction(ctx context.Context, b models.KeyBinding) bool {
	for {
		a.show(
			"Key pressed: "+b.String(),
			"",
			"Select Action:",
			"s) Switch Scene",
			"q) Enable Scene Item",
			"w) Disable Scene Item",
			"t) Toggle Input Mute",
			"e) Mute Input",
			"r) Unmute Input",
			"h) Trigger Hotkey",
			"Esc) Back",
		)
		ev := a.readKey()
		if ev == nil || ev.Key() == tcell.KeyEscape {
			return false
		}

		var action models.Action
		switch choice(ev) {
		case 's':
			if scene, ok := a.chooseScene(ctx); ok {
				action = models.SwitchScene{SceneName: scene}
			}
		case 'q':
			if scene, item, ok := a.chooseSceneItem(ctx); ok {
				action = models.EnableItem{SceneName: scene, ItemID: item.SceneItemID, ItemName: item.SourceName}
			}
		case 'w':
			if scene, item, ok := a.chooseSceneItem(ctx); ok {
				action = models.DisableItem{SceneName: scene, ItemID: item.SceneItemID, ItemName: item.SourceName}
			}
		case 't':
			if input, ok := a.chooseInput(ctx); ok {
				action = models.NewToggleInputMute(input)
			}
		case 'e':
			if input, ok := a.chooseInput(ctx); ok {
				action = models.MuteInput{InputName: input}
			}
		case 'r':
			if input, ok := a.chooseInput(ctx); ok {
				action = models.UnmuteInput{InputName: input}
			}
		case 'h':
			if hotkey, ok := a.chooseHotkey(ctx); ok {
				action = models.TriggerHotkey{Hotkey: hotkey}
			}
		}
		if a.quit {
			return false
		}
		if action != nil {
			a.macros.Bind(b, action)
			a.ok("%s -> %s", b, action.Describe())
			return true
		}
	}
}

func (a *App) chooseScene(ctx context.Context) (string, bool) {
	a.progress("Listing Scenes...")
	scenes, err := a.catalog.GetSceneList(ctx)
	if err != nil {
		a.fail("Couldn't list scenes: %v", err)
		return "", false
	}
	names := make([]string, len(scenes))
	for i, s := range scenes {
		names[i] = s.SceneName
	}
	i, ok := a.promptChoice("Select Scene:", names)
	if !ok {
		return "", false
	}
	return names[i], true
}

func (a *App) chooseSceneItem(ctx context.Context) (string, obs.SceneItem, bool) {
	scene, ok := a.chooseScene(ctx)
	if !ok {
		return "", obs.SceneItem{}, false
	}

	a.progress("Listing Items...")
	items, err := a.catalog.GetSceneItemList(ctx, scene)
	if err != nil {
		a.fail("Couldn't list items of %s: %v", scene, err)
		return "", obs.SceneItem{}, false
	}
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.SourceName
	}
	i, ok := a.promptChoice("Select Item in "+scene+":", names)
	if !ok {
		return "", obs.SceneItem{}, false
	}
	return scene, items[i], true
}

func (a *App) chooseInput(ctx context.Context) (string, bool) {
	a.progress("Listing Inputs...")
	inputs, err := a.catalog.GetInputList(ctx)
	if err != nil {
		a.fail("Couldn't list inputs: %v", err)
		return "", false
	}
	inputs = obs.FilterAudioInputs(inputs)
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.InputName
	}
	i, ok := a.promptChoice("Select Input:", names)
	if !ok {
		return "", false
	}
	return names[i], true
}

func (a *App) chooseHotkey(ctx context.Context) (string, bool) {
	a.progress("Listing Hotkeys...")
	hotkeys, err := a.catalog.GetHotkeyList(ctx)
	if err != nil {
		a.fail("Couldn't list hotkeys: %v", err)
		return "", false
	}
	i, ok := a.promptChoice("Select Hotkey:", hotkeys)
	if !ok {
		return "", false
	}
	return hotkeys[i], true
}

// promptChoice lists names with their indexes and reads an index terminated
// by Enter. Invalid entries re-prompt. Long lists page with PgUp/PgDn.
func (a *App) promptChoice(title string, names []string) (int, bool) {
	if len(names) == 0 {
		a.fail("Nothing to choose from")
		return 0, false
	}

	var entry []rune
	page := 0
	for {
		size := a.pageSize()
		pages := (len(names) + size - 1) / size
		if page >= pages {
			page = pages - 1
		}

		lines := []string{title}
		for i := page * size; i < len(names) && i < (page+1)*size; i++ {
			lines = append(lines, fmt.Sprintf("%d)\t%s", i, names[i]))
		}
		if pages > 1 {
			lines = append(lines, fmt.Sprintf("PgUp/PgDn: page %d/%d", page+1, pages))
		}
		lines = append(lines, "Enter index: "+string(entry))
		a.show(lines...)

		ev := a.readKey()
		if ev == nil || ev.Key() == tcell.KeyEscape {
			return 0, false
		}
		switch ev.Key() {
		case tcell.KeyEnter:
			i, err := strconv.Atoi(string(entry))
			entry = entry[:0]
			switch {
			case err != nil:
				a.fail("Not a number!")
			case i < 0 || i >= len(names):
				a.fail("No entry %d", i)
			default:
				return i, true
			}
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(entry) > 0 {
				entry = entry[:len(entry)-1]
			}
		case tcell.KeyPgDn:
			if page < pages-1 {
				page++
			}
		case tcell.KeyPgUp:
			if page > 0 {
				page--
			}
		case tcell.KeyRune:
			entry = append(entry, ev.Rune())
		}
	}
}

func (a *App) removeKey() {
	for {
		a.show(append(a.macroLines(), "Enter key to remove")...)
		ev := a.readKey()
		if ev == nil || ev.Key() == tcell.KeyEscape {
			return
		}
		b, ok := BindingFromEvent(ev)
		if ok && a.macros.Unbind(b) {
			a.ok("Removed %s", b)
			return
		}
		name := ev.Name()
		if ok {
			name = b.String()
		}
		a.fail("Key %s not found", name)
	}
}

func (a *App) save() {
	if err := a.macros.Save(); err != nil {
		a.fail("Save failed: %v", err)
		return
	}
	a.ok("Saved")
}

func (a *App) macroLines() []string {
	return strings.Split(a.macros.MacrosString(), "\n")
}

// readKey draws the current view and blocks for the next key. It returns
// nil once the app should exit.
func (a *App) readKey() *tcell.EventKey {
	if a.quit {
		return nil
	}
	a.draw()
	for {
		switch ev := a.next().(type) {
		case nil:
			a.quit = true
			return nil
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlC {
				a.quit = true
				return nil
			}
			a.status = ""
			return ev
		case *tcell.EventResize:
			a.screen.Sync()
			a.draw()
		case *tcell.EventInterrupt:
			if n, ok := ev.Data().(connectionNotice); ok {
				a.conn = obs.ConnectionState(n)
				a.draw()
			}
		}
	}
}

func (a *App) show(lines ...string) {
	a.lines = lines
}

// progress draws a view right away, ahead of a blocking remote call.
func (a *App) progress(line string) {
	a.show(line)
	a.draw()
}

func (a *App) ok(format string, args ...interface{}) {
	a.status = fmt.Sprintf(format, args...)
	a.failed = false
}

func (a *App) fail(format string, args ...interface{}) {
	a.status = fmt.Sprintf(format, args...)
	a.failed = true
}

func (a *App) pageSize() int {
	_, h := a.screen.Size()
	// title, pager, prompt and the status block
	if n := h - headerRows - 6; n > 5 {
		return n
	}
	return 5
}

func (a *App) draw() {
	a.screen.Clear()

	x := drawText(a.screen, 0, 0, "OBS Macros", styleHeader)
	connStyle := styleError
	if a.conn == obs.StateConnected {
		connStyle = styleOK
	}
	drawText(a.screen, x+2, 0, "["+a.conn.String()+"]", connStyle)

	y := headerRows
	for _, line := range a.lines {
		drawText(a.screen, 0, y, line, styleText)
		y++
	}
	if a.status != "" {
		style := styleOK
		if a.failed {
			style = styleError
		}
		drawText(a.screen, 0, y+1, a.status, style)
	}
	a.screen.Show()
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) int {
	for _, r := range text {
		if r == '\t' {
			x = (x/8 + 1) * 8
			continue
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}

// choice folds case so menu letters work with Shift or Caps Lock.
func choice(ev *tcell.EventKey) rune {
	if ev.Key() != tcell.KeyRune {
		return 0
	}
	return unicode.ToLower(ev.Rune())
}
