package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Key is a logical key identity. Values match the key codes stored by
// earlier config files, so they must never be renumbered.
type Key uint8

const (
	KeyNone        Key = 0
	KeyBackspace   Key = 8
	KeyTab         Key = 9
	KeyClear       Key = 12
	KeyEnter       Key = 13
	KeyPause       Key = 19
	KeyEscape      Key = 27
	KeySpacebar    Key = 32
	KeyPageUp      Key = 33
	KeyPageDown    Key = 34
	KeyEnd         Key = 35
	KeyHome        Key = 36
	KeyLeftArrow   Key = 37
	KeyUpArrow     Key = 38
	KeyRightArrow  Key = 39
	KeyDownArrow   Key = 40
	KeyPrintScreen Key = 44
	KeyInsert      Key = 45
	KeyDelete      Key = 46
	KeyD0          Key = 48 // D1..D9 follow
	KeyA           Key = 65 // B..Z follow
	KeyNumPad0     Key = 96 // NumPad1..NumPad9 follow
	KeyMultiply    Key = 106
	KeyAdd         Key = 107
	KeySeparator   Key = 108
	KeySubtract    Key = 109
	KeyDecimal     Key = 110
	KeyDivide      Key = 111
	KeyF1          Key = 112 // F2..F24 follow
	KeyOem1        Key = 186 // ;:
	KeyOemPlus     Key = 187
	KeyOemComma    Key = 188
	KeyOemMinus    Key = 189
	KeyOemPeriod   Key = 190
	KeyOem2        Key = 191 // /?
	KeyOem3        Key = 192 // `~
	KeyOem4        Key = 219 // [{
	KeyOem5        Key = 220 // \|
	KeyOem6        Key = 221 // ]}
	KeyOem7        Key = 222 // '"
	KeyOem8        Key = 223
)

// Modifiers is the modifier bitset of a binding.
type Modifiers uint8

const (
	ModNone    Modifiers = 0
	ModAlt     Modifiers = 1
	ModShift   Modifiers = 2
	ModControl Modifiers = 4

	modMask = ModAlt | ModShift | ModControl
)

var (
	keyNames   = map[Key]string{}
	namesToKey = map[string]Key{}
)

func init() {
	named := map[Key]string{
		KeyBackspace:   "Backspace",
		KeyTab:         "Tab",
		KeyClear:       "Clear",
		KeyEnter:       "Enter",
		KeyPause:       "Pause",
		KeyEscape:      "Escape",
		KeySpacebar:    "Spacebar",
		KeyPageUp:      "PageUp",
		KeyPageDown:    "PageDown",
		KeyEnd:         "End",
		KeyHome:        "Home",
		KeyLeftArrow:   "LeftArrow",
		KeyUpArrow:     "UpArrow",
		KeyRightArrow:  "RightArrow",
		KeyDownArrow:   "DownArrow",
		KeyPrintScreen: "PrintScreen",
		KeyInsert:      "Insert",
		KeyDelete:      "Delete",
		KeyMultiply:    "Multiply",
		KeyAdd:         "Add",
		KeySeparator:   "Separator",
		KeySubtract:    "Subtract",
		KeyDecimal:     "Decimal",
		KeyDivide:      "Divide",
		KeyOem1:        "Oem1",
		KeyOemPlus:     "OemPlus",
		KeyOemComma:    "OemComma",
		KeyOemMinus:    "OemMinus",
		KeyOemPeriod:   "OemPeriod",
		KeyOem2:        "Oem2",
		KeyOem3:        "Oem3",
		KeyOem4:        "Oem4",
		KeyOem5:        "Oem5",
		KeyOem6:        "Oem6",
		KeyOem7:        "Oem7",
		KeyOem8:        "Oem8",
	}
	for i := 0; i < 10; i++ {
		named[KeyD0+Key(i)] = "D" + strconv.Itoa(i)
		named[KeyNumPad0+Key(i)] = "NumPad" + strconv.Itoa(i)
	}
	for i := 0; i < 26; i++ {
		named[KeyA+Key(i)] = string(rune('A' + i))
	}
	for i := 0; i < 24; i++ {
		named[KeyF1+Key(i)] = "F" + strconv.Itoa(i+1)
	}

	for k, name := range named {
		keyNames[k] = name
		namesToKey[strings.ToUpper(name)] = k
	}
}

// String returns the key name, or Key(N) for codes without a name.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Key(%d)", uint8(k))
}

// KeyFromName resolves a key name case-insensitively. Key(N) forms are
// accepted so every rendered key parses back.
func KeyFromName(name string) (Key, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if k, ok := namesToKey[upper]; ok {
		return k, true
	}
	if strings.HasPrefix(upper, "KEY(") && strings.HasSuffix(upper, ")") {
		n, err := strconv.ParseUint(upper[4:len(upper)-1], 10, 8)
		if err == nil {
			return Key(n), true
		}
	}
	return KeyNone, false
}

// Has reports whether all bits of mod are set.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod == mod
}

// KeyBinding identifies a macro trigger. It is comparable and is used
// directly as a map key.
type KeyBinding struct {
	Key       Key
	Modifiers Modifiers
}

// Bind is shorthand for constructing a binding.
func Bind(k Key, mods ...Modifiers) KeyBinding {
	b := KeyBinding{Key: k}
	for _, m := range mods {
		b.Modifiers |= m
	}
	b.Modifiers &= modMask
	return b
}

// Pack returns the stored form: key code in the low byte, modifier
// bitset in the next byte.
func (b KeyBinding) Pack() uint32 {
	return uint32(b.Key) | uint32(b.Modifiers&modMask)<<8
}

// UnpackKeyBinding is the inverse of Pack. Bits outside the key and
// modifier ranges are ignored.
func UnpackKeyBinding(v uint32) KeyBinding {
	return KeyBinding{
		Key:       Key(v & 0xFF),
		Modifiers: Modifiers(v>>8) & modMask,
	}
}

// String renders the binding as KEY+CTRL+ALT+SHIFT, omitting modifiers
// that are not held.
func (b KeyBinding) String() string {
	var sb strings.Builder
	sb.WriteString(b.Key.String())
	if b.Modifiers.Has(ModControl) {
		sb.WriteString("+CTRL")
	}
	if b.Modifiers.Has(ModAlt) {
		sb.WriteString("+ALT")
	}
	if b.Modifiers.Has(ModShift) {
		sb.WriteString("+SHIFT")
	}
	return sb.String()
}

// Less orders bindings by key code, then by modifier bitset.
func (b KeyBinding) Less(other KeyBinding) bool {
	if b.Key != other.Key {
		return b.Key < other.Key
	}
	return b.Modifiers < other.Modifiers
}

// ParseKeyBinding parses the String form. Modifier names may appear in
// any order and in any case.
func ParseKeyBinding(s string) (KeyBinding, error) {
	parts := strings.Split(s, "+")
	k, ok := KeyFromName(parts[0])
	if !ok {
		return KeyBinding{}, fmt.Errorf("unknown key %q", parts[0])
	}

	b := KeyBinding{Key: k}
	for _, p := range parts[1:] {
		switch strings.ToUpper(strings.TrimSpace(p)) {
		case "CTRL", "CONTROL":
			b.Modifiers |= ModControl
		case "ALT":
			b.Modifiers |= ModAlt
		case "SHIFT":
			b.Modifiers |= ModShift
		default:
			return KeyBinding{}, fmt.Errorf("unknown modifier %q in %q", p, s)
		}
	}
	return b, nil
}
