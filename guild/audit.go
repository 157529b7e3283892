package guild

import "fmt"

// Audit lists references in c that point at messages which do not exist.
// Dangling references are legal: navigation to them is silently dropped.
func (c *ServerConfig) Audit() []string {
	var findings []string
	for _, s := range c.Messages.List() {
		for _, b := range s.Buttons {
			if _, ok := c.Messages.Get(b.Target); !ok {
				findings = append(findings, fmt.Sprintf("button %q on message %q targets missing message %q", b.Label, s.Name, b.Target))
			}
		}
	}
	for _, t := range c.RoleTriggers.Sorted() {
		if _, ok := c.Messages.Get(t.MessageID); !ok {
			findings = append(findings, fmt.Sprintf("role trigger %s targets missing message %q", t.RoleID, t.MessageID))
		}
	}
	return findings
}
