package guild

import (
	"bytes"
	"fmt"
)

const previewLength = 30

// MessageSet maps message names to messages and remembers insertion order,
// which is also the order the names are written back to disk.
type MessageSet struct {
	names  []string
	byName map[string]Message
}

// MessageSummary is one line of a message listing.
type MessageSummary struct {
	Name    string
	Preview string
	Buttons []Button
}

// NewMessageSet returns an empty set.
func NewMessageSet() MessageSet {
	return MessageSet{byName: make(map[string]Message)}
}

// Len returns the number of messages.
func (s *MessageSet) Len() int {
	return len(s.names)
}

// Names returns the message names in insertion order.
func (s *MessageSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Get looks up a message by name. The returned buttons are a private copy.
func (s *MessageSet) Get(name string) (Message, bool) {
	m, ok := s.byName[name]
	if !ok {
		return Message{}, false
	}
	m.Buttons = cloneButtons(m.Buttons)
	return m, true
}

// Set creates the message or overwrites its content, keeping existing buttons.
func (s *MessageSet) Set(name, content string) {
	var buttons []Button
	if existing, ok := s.byName[name]; ok {
		buttons = existing.Buttons
	}
	s.put(name, Message{Content: content, Buttons: cloneButtons(buttons)})
}

// SetWithButtons creates or overwrites the message and replaces its buttons.
func (s *MessageSet) SetWithButtons(name, content string, buttons []Button) {
	s.put(name, Message{Content: content, Buttons: cloneButtons(buttons)})
}

// SetButton upserts a button by label on an existing message. The first button
// with the same label keeps its position and gets the new target.
func (s *MessageSet) SetButton(name, label, target string) error {
	m, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrMessageNotFound, name)
	}
	buttons := cloneButtons(m.Buttons)
	replaced := false
	for i := range buttons {
		if buttons[i].Label == label {
			buttons[i].Target = target
			replaced = true
			break
		}
	}
	if !replaced {
		buttons = append(buttons, Button{Label: label, Target: target})
	}
	m.Buttons = buttons
	s.byName[name] = m
	return nil
}

// DeleteButton removes every button whose label matches, since labels are not
// unique. It reports whether anything was removed.
func (s *MessageSet) DeleteButton(name, label string) bool {
	m, ok := s.byName[name]
	if !ok {
		return false
	}
	kept := make([]Button, 0, len(m.Buttons))
	for _, b := range m.Buttons {
		if b.Label != label {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(m.Buttons) {
		return false
	}
	m.Buttons = kept
	s.byName[name] = m
	return true
}

// Delete removes a message. Buttons elsewhere that target it are left alone.
func (s *MessageSet) Delete(name string) bool {
	if _, ok := s.byName[name]; !ok {
		return false
	}
	delete(s.byName, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i:i], s.names[i+1:]...)
			break
		}
	}
	return true
}

// List summarizes every message in insertion order.
func (s *MessageSet) List() []MessageSummary {
	out := make([]MessageSummary, 0, len(s.names))
	for _, name := range s.names {
		m := s.byName[name]
		out = append(out, MessageSummary{
			Name:    name,
			Preview: preview(m.Content),
			Buttons: cloneButtons(m.Buttons),
		})
	}
	return out
}

// Equal reports whether both sets hold the same messages in the same order.
func (s MessageSet) Equal(other MessageSet) bool {
	if len(s.names) != len(other.names) {
		return false
	}
	for i, name := range s.names {
		if other.names[i] != name {
			return false
		}
		a, b := s.byName[name], other.byName[name]
		if a.Content != b.Content || len(a.Buttons) != len(b.Buttons) {
			return false
		}
		for j := range a.Buttons {
			if a.Buttons[j] != b.Buttons[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON writes the set as an object whose keys keep insertion order.
func (s MessageSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(name)
		if err != nil {
			return nil, err
		}
		m := s.byName[name]
		if m.Buttons == nil {
			m.Buttons = []Button{}
		}
		value, err := marshal(m)
		if err != nil {
			return nil, fmt.Errorf("could not marshal message %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of messages, keeping key order.
func (s *MessageSet) UnmarshalJSON(data []byte) error {
	set, err := decodeMessages(parse(data), "messages")
	if err != nil {
		return err
	}
	*s = set
	return nil
}

func (s *MessageSet) put(name string, m Message) {
	if s.byName == nil {
		s.byName = make(map[string]Message)
	}
	if _, ok := s.byName[name]; !ok {
		s.names = append(s.names, name)
	}
	if m.Buttons == nil {
		m.Buttons = []Button{}
	}
	s.byName[name] = m
}

func (s MessageSet) clone() MessageSet {
	out := MessageSet{
		names:  make([]string, len(s.names)),
		byName: make(map[string]Message, len(s.byName)),
	}
	copy(out.names, s.names)
	for name, m := range s.byName {
		m.Buttons = cloneButtons(m.Buttons)
		out.byName[name] = m
	}
	return out
}

func cloneButtons(buttons []Button) []Button {
	out := make([]Button, len(buttons))
	copy(out, buttons)
	return out
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}
