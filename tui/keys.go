package tui

import (
	"github.com/gdamore/tcell/v2"

	"obsmacros/models"
)

type runeKey struct {
	key   models.Key
	shift bool
}

// US layout. Shifted symbols resolve to the key that produces them.
var runeKeys = map[rune]runeKey{
	' ':  {models.KeySpacebar, false},
	';':  {models.KeyOem1, false},
	':':  {models.KeyOem1, true},
	'=':  {models.KeyOemPlus, false},
	'+':  {models.KeyOemPlus, true},
	',':  {models.KeyOemComma, false},
	'<':  {models.KeyOemComma, true},
	'-':  {models.KeyOemMinus, false},
	'_':  {models.KeyOemMinus, true},
	'.':  {models.KeyOemPeriod, false},
	'>':  {models.KeyOemPeriod, true},
	'/':  {models.KeyOem2, false},
	'?':  {models.KeyOem2, true},
	'`':  {models.KeyOem3, false},
	'~':  {models.KeyOem3, true},
	'[':  {models.KeyOem4, false},
	'{':  {models.KeyOem4, true},
	'\\': {models.KeyOem5, false},
	'|':  {models.KeyOem5, true},
	']':  {models.KeyOem6, false},
	'}':  {models.KeyOem6, true},
	'\'': {models.KeyOem7, false},
	'"':  {models.KeyOem7, true},
	')':  {models.KeyD0, true},
	'!':  {models.KeyD0 + 1, true},
	'@':  {models.KeyD0 + 2, true},
	'#':  {models.KeyD0 + 3, true},
	'$':  {models.KeyD0 + 4, true},
	'%':  {models.KeyD0 + 5, true},
	'^':  {models.KeyD0 + 6, true},
	'&':  {models.KeyD0 + 7, true},
	'*':  {models.KeyD0 + 8, true},
	'(':  {models.KeyD0 + 9, true},
}

var namedKeys = map[tcell.Key]models.Key{
	tcell.KeyUp:     models.KeyUpArrow,
	tcell.KeyDown:   models.KeyDownArrow,
	tcell.KeyLeft:   models.KeyLeftArrow,
	tcell.KeyRight:  models.KeyRightArrow,
	tcell.KeyPgUp:   models.KeyPageUp,
	tcell.KeyPgDn:   models.KeyPageDown,
	tcell.KeyHome:   models.KeyHome,
	tcell.KeyEnd:    models.KeyEnd,
	tcell.KeyInsert: models.KeyInsert,
	tcell.KeyDelete: models.KeyDelete,
	tcell.KeyPause:  models.KeyPause,
	tcell.KeyPrint:  models.KeyPrintScreen,
	tcell.KeyClear:  models.KeyClear,
}

// BindingFromEvent maps a terminal key event to the binding it triggers.
// It reports false for events with no key identity, such as non-ASCII
// runes.
func BindingFromEvent(ev *tcell.EventKey) (models.KeyBinding, bool) {
	var mods models.Modifiers
	m := ev.Modifiers()
	if m&tcell.ModCtrl != 0 {
		mods |= models.ModControl
	}
	if m&tcell.ModAlt != 0 {
		mods |= models.ModAlt
	}
	if m&tcell.ModShift != 0 {
		mods |= models.ModShift
	}

	k := ev.Key()
	switch {
	case k == tcell.KeyRune:
		return bindingFromRune(ev.Rune(), mods)
	case k >= tcell.KeyF1 && k < tcell.KeyF1+24:
		return models.KeyBinding{Key: models.KeyF1 + models.Key(k-tcell.KeyF1), Modifiers: mods}, true
	}

	switch k {
	case tcell.KeyTab:
		return models.KeyBinding{Key: models.KeyTab, Modifiers: mods}, true
	case tcell.KeyBacktab:
		return models.KeyBinding{Key: models.KeyTab, Modifiers: mods | models.ModShift}, true
	case tcell.KeyEnter:
		return models.KeyBinding{Key: models.KeyEnter, Modifiers: mods}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return models.KeyBinding{Key: models.KeyBackspace, Modifiers: mods}, true
	case tcell.KeyEscape:
		return models.KeyBinding{Key: models.KeyEscape, Modifiers: mods}, true
	case tcell.KeyCtrlSpace:
		return models.KeyBinding{Key: models.KeySpacebar, Modifiers: mods | models.ModControl}, true
	}

	if k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		return models.KeyBinding{Key: models.KeyA + models.Key(k-tcell.KeyCtrlA), Modifiers: mods | models.ModControl}, true
	}
	if key, ok := namedKeys[k]; ok {
		return models.KeyBinding{Key: key, Modifiers: mods}, true
	}
	return models.KeyBinding{}, false
}

func bindingFromRune(r rune, mods models.Modifiers) (models.KeyBinding, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return models.KeyBinding{Key: models.KeyA + models.Key(r-'a'), Modifiers: mods}, true
	case r >= 'A' && r <= 'Z':
		return models.KeyBinding{Key: models.KeyA + models.Key(r-'A'), Modifiers: mods | models.ModShift}, true
	case r >= '0' && r <= '9':
		return models.KeyBinding{Key: models.KeyD0 + models.Key(r-'0'), Modifiers: mods}, true
	}
	if rk, ok := runeKeys[r]; ok {
		if rk.shift {
			mods |= models.ModShift
		}
		return models.KeyBinding{Key: rk.key, Modifiers: mods}, true
	}
	return models.KeyBinding{}, false
}
