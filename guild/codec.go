package guild

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
)

// Encode renders the document the way it is stored, indented with four spaces.
// Content is not HTML-escaped so "<user>" stays readable on disk.
func Encode(c *ServerConfig) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("could not marshal server config %d: %w", c.ServerID, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Decode parses a stored document. Missing keys take their defaults; values of
// the wrong type are rejected with ErrInvalidDocument. When key is not Unset
// the document must belong to it; a document without server_id adopts key.
func Decode(data []byte, key int64) (*ServerConfig, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidDocument)
	}
	root := parse(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidDocument)
	}

	cfg := NewServerConfig(Unset)
	var err error
	if cfg.ServerID, err = intField(root, "server_id", key); err != nil {
		return nil, err
	}
	if key != Unset && cfg.ServerID != key {
		return nil, fmt.Errorf("%w: server_id %d stored under key %d", ErrInvalidDocument, cfg.ServerID, key)
	}
	if cfg.WelcomeChannelID, err = intField(root, "welcome_channel_id", Unset); err != nil {
		return nil, err
	}
	if cfg.WelcomeRoleID, err = intField(root, "welcome_role_id", Unset); err != nil {
		return nil, err
	}
	if cfg.SendWelcomeOnJoin, err = boolField(root, "send_welcome_on_join"); err != nil {
		return nil, err
	}
	if cfg.Messages, err = decodeMessages(root.Get("messages"), "messages"); err != nil {
		return nil, err
	}
	if cfg.RoleTriggers, err = decodeRoleTriggers(root.Get("role_triggers")); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(data []byte) gjson.Result {
	return gjson.ParseBytes(data)
}

func missing(v gjson.Result) bool {
	return !v.Exists() || v.Type == gjson.Null
}

func mismatch(path, want string) error {
	return fmt.Errorf("%w: %s must be %s", ErrInvalidDocument, path, want)
}

func intValue(v gjson.Result, path string) (int64, error) {
	if v.Type != gjson.Number {
		return 0, mismatch(path, "an integer")
	}
	n, err := strconv.ParseInt(v.Raw, 10, 64)
	if err != nil {
		return 0, mismatch(path, "an integer")
	}
	return n, nil
}

func intField(obj gjson.Result, key string, def int64) (int64, error) {
	v := obj.Get(key)
	if missing(v) {
		return def, nil
	}
	return intValue(v, key)
}

func boolField(obj gjson.Result, key string) (bool, error) {
	v := obj.Get(key)
	if missing(v) {
		return false, nil
	}
	if v.Type != gjson.True && v.Type != gjson.False {
		return false, mismatch(key, "a boolean")
	}
	return v.Bool(), nil
}

func stringField(obj gjson.Result, key, path string) (string, error) {
	v := obj.Get(key)
	if missing(v) {
		return "", nil
	}
	if v.Type != gjson.String {
		return "", mismatch(path+"."+key, "a string")
	}
	return v.Str, nil
}

func decodeMessages(v gjson.Result, path string) (MessageSet, error) {
	set := NewMessageSet()
	if missing(v) {
		return set, nil
	}
	if !v.IsObject() {
		return set, mismatch(path, "an object")
	}
	var err error
	v.ForEach(func(k, value gjson.Result) bool {
		name := k.String()
		var m Message
		m, err = decodeMessage(value, path+"."+name)
		if err != nil {
			return false
		}
		set.SetWithButtons(name, m.Content, m.Buttons)
		return true
	})
	if err != nil {
		return NewMessageSet(), err
	}
	return set, nil
}

func decodeMessage(v gjson.Result, path string) (Message, error) {
	if !v.IsObject() {
		return Message{}, mismatch(path, "an object")
	}
	content, err := stringField(v, "content", path)
	if err != nil {
		return Message{}, err
	}
	m := Message{Content: content, Buttons: []Button{}}
	buttons := v.Get("buttons")
	if missing(buttons) {
		return m, nil
	}
	if !buttons.IsArray() {
		return Message{}, mismatch(path+".buttons", "an array")
	}
	for i, b := range buttons.Array() {
		bpath := fmt.Sprintf("%s.buttons[%d]", path, i)
		if !b.IsObject() {
			return Message{}, mismatch(bpath, "an object")
		}
		label, err := stringField(b, "label", bpath)
		if err != nil {
			return Message{}, err
		}
		target, err := stringField(b, "target", bpath)
		if err != nil {
			return Message{}, err
		}
		m.Buttons = append(m.Buttons, Button{Label: label, Target: target})
	}
	return m, nil
}

func decodeRoleTriggers(v gjson.Result) (RoleTriggers, error) {
	triggers := make(RoleTriggers)
	if missing(v) {
		return triggers, nil
	}
	if !v.IsObject() {
		return nil, mismatch("role_triggers", "an object")
	}
	var err error
	v.ForEach(func(k, value gjson.Result) bool {
		roleID := k.String()
		path := "role_triggers." + roleID
		if !value.IsObject() {
			err = mismatch(path, "an object")
			return false
		}
		var messageID string
		if messageID, err = stringField(value, "message_id", path); err != nil {
			return false
		}
		var priority int64
		if p := value.Get("priority"); !missing(p) {
			if priority, err = intValue(p, path+".priority"); err != nil {
				return false
			}
		}
		triggers[roleID] = RoleTrigger{MessageID: messageID, Priority: int(priority)}
		return true
	})
	if err != nil {
		return nil, err
	}
	return triggers, nil
}
