package guild

import "sort"

// RoleTriggers maps a role id (decimal string) to its trigger.
type RoleTriggers map[string]RoleTrigger

// RoleTriggerEntry is a trigger together with its role id.
type RoleTriggerEntry struct {
	RoleID string
	RoleTrigger
}

// Set upserts the trigger for roleID.
func (t RoleTriggers) Set(roleID, messageID string, priority int) {
	t[roleID] = RoleTrigger{MessageID: messageID, Priority: priority}
}

// Delete removes the trigger for roleID and reports whether one existed.
func (t RoleTriggers) Delete(roleID string) bool {
	if _, ok := t[roleID]; !ok {
		return false
	}
	delete(t, roleID)
	return true
}

// Resolve picks the message for a set of newly granted roles: the trigger with
// the strictly greatest priority wins. On a tie the role listed first in
// added wins; callers should not depend on that.
func (t RoleTriggers) Resolve(added []string) (string, bool) {
	var (
		best  RoleTrigger
		found bool
	)
	for _, roleID := range added {
		trigger, ok := t[roleID]
		if !ok {
			continue
		}
		if !found || trigger.Priority > best.Priority {
			best = trigger
			found = true
		}
	}
	if !found {
		return "", false
	}
	return best.MessageID, true
}

// Sorted lists the triggers by priority, highest first, then by role id.
func (t RoleTriggers) Sorted() []RoleTriggerEntry {
	out := make([]RoleTriggerEntry, 0, len(t))
	for id, trigger := range t {
		out = append(out, RoleTriggerEntry{RoleID: id, RoleTrigger: trigger})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].RoleID < out[j].RoleID
	})
	return out
}
