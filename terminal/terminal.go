// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package terminal

import (
	"fmt"
	"strings"
)

// ID identifies one of the fixed terminals. The values are the wire
// identifiers used in the protocol's terminal fields.
type ID string

const (
	Firewall ID = "firewall"
	Insider  ID = "insider"
	Outsider ID = "outsider"
	DMZ      ID = "dmz"
)

// IDs returns every terminal in display order.
func IDs() []ID {
	return []ID{Firewall, Insider, Outsider, DMZ}
}

// ParseID validates a wire terminal identifier.
func ParseID(value string) (ID, error) {
	for _, id := range IDs() {
		if string(id) == value {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown terminal %q", value)
}

type descriptor struct {
	title string
	label string
}

var descriptors = map[ID]descriptor{
	Firewall: {title: "FIREWALL ADMIN", label: "Firewall Admin"},
	Insider:  {title: "LAN1-INTERNAL", label: "LAN1 - Internal PC"},
	Outsider: {title: "LAN2-EXTERNAL", label: "LAN2 - External PC"},
	DMZ:      {title: "DMZ-WEBSERVER", label: "DMZ - Web Server"},
}

// ANSI SGR sequences used in terminal content.
const (
	sgrReset      = "\x1b[0m"
	sgrBoldRed    = "\x1b[1;31m"
	sgrBoldGreen  = "\x1b[1;32m"
	sgrBoldYellow = "\x1b[1;33m"
	sgrBoldBlue   = "\x1b[1;34m"
	sgrBoldCyan   = "\x1b[1;36m"
	sgrCyan       = "\x1b[36m"
)

// Prompt returns the shell prompt for id.
func Prompt(id ID) string {
	return sgrBoldCyan + string(id) + "@firewall" + sgrReset + ":" + sgrBoldBlue + "~" + sgrReset + "$ "
}

// Red and Green wrap text for connection banners.
func Red(text string) string   { return sgrBoldRed + text + sgrReset }
func Green(text string) string { return sgrBoldGreen + text + sgrReset }

// Terminal is one console session: its command buffer, addressing
// display and screen. Terminals are created by [NewRegistry] and
// mutated only through a [Multiplexer].
type Terminal struct {
	id      ID
	title   string
	label   string
	buffer  string
	ip      string
	network string
	screen  *Screen
}

func newTerminal(id ID, scrollback int) *Terminal {
	descriptor := descriptors[id]
	terminal := &Terminal{
		id:     id,
		title:  descriptor.title,
		label:  descriptor.label,
		screen: NewScreen(scrollback),
	}
	terminal.writeWelcome()
	terminal.screen.Write(Prompt(id))
	return terminal
}

// ID returns the terminal's identity.
func (t *Terminal) ID() ID { return t.id }

// Title returns the banner title, e.g. "DMZ-WEBSERVER".
func (t *Terminal) Title() string { return t.title }

// Buffer returns the pending command text.
func (t *Terminal) Buffer() string { return t.buffer }

// Screen returns the terminal's rendering surface.
func (t *Terminal) Screen() *Screen { return t.screen }

// IP returns the last address the server reported, or "".
func (t *Terminal) IP() string { return t.ip }

// NetworkLabel returns "Network: <net>" once a network is known.
func (t *Terminal) NetworkLabel() string {
	if t.network == "" {
		return ""
	}
	return "Network: " + t.network
}

// DisplayTitle is the address label, followed by the IP in
// parentheses once one is known.
func (t *Terminal) DisplayTitle() string {
	if t.ip == "" {
		return t.label
	}
	return fmt.Sprintf("%s (%s)", t.label, t.ip)
}

func (t *Terminal) writeWelcome() {
	screen := t.screen
	screen.WriteLine(sgrBoldGreen + "╔════════════════════════════════════════════════════╗" + sgrReset)
	screen.WriteLine(sgrBoldGreen + fmt.Sprintf("║   WebApp Firewall Simulator - %-18s   ║", t.title) + sgrReset)
	screen.WriteLine(sgrBoldGreen + "║   Educational Network Security Tool                ║" + sgrReset)
	screen.WriteLine(sgrBoldGreen + "╚════════════════════════════════════════════════════╝" + sgrReset)
	screen.WriteLine("")

	if t.id == Firewall {
		screen.WriteLine(sgrBoldYellow + "Firewall Configuration Terminal" + sgrReset)
		screen.WriteLine("Configure iptables rules to control all network traffic.")
		screen.WriteLine("")
		screen.WriteLine(sgrCyan + "Common commands:" + sgrReset)
		for _, example := range []string{
			"iptables -A OUTPUT -s 192.168.10.0/24 -p tcp --dport 80 -j ACCEPT",
			"iptables -A INPUT -s 192.168.20.0/24 -d 192.168.30.10 -j ACCEPT",
			"iptables -L -v",
		} {
			screen.WriteLine("  " + example)
		}
	} else {
		screen.WriteLine(sgrBoldYellow + "Configure your network:" + sgrReset)
		screen.WriteLine("  $ " + sgrCyan + "ifconfig set ip <ip_address>" + sgrReset)
		screen.WriteLine("")
		screen.WriteLine(sgrBoldYellow + "Test connectivity:" + sgrReset)
		screen.WriteLine("  $ " + sgrCyan + "ping <target_ip>" + sgrReset)
		screen.WriteLine("  $ " + sgrCyan + "nmap -p 80,443 <target_ip>" + sgrReset)
	}
	screen.WriteLine("")
	screen.WriteLine("Type " + sgrBoldYellow + "help" + sgrReset + " for all available commands.")
	screen.WriteLine("")
}

// renderPrompt writes the prompt and any pending buffer so the screen
// keeps showing what the buffer holds.
func (t *Terminal) renderPrompt() {
	t.screen.Write(Prompt(t.id) + t.buffer)
}

// Registry maps every terminal identity to its Terminal for one
// client session.
type Registry struct {
	terminals map[ID]*Terminal
}

// NewRegistry creates all terminals with their welcome banners and
// first prompt.
func NewRegistry(scrollback int) *Registry {
	registry := &Registry{terminals: make(map[ID]*Terminal, len(descriptors))}
	for _, id := range IDs() {
		registry.terminals[id] = newTerminal(id, scrollback)
	}
	return registry
}

// Get returns the terminal for id.
func (r *Registry) Get(id ID) (*Terminal, bool) {
	terminal, ok := r.terminals[id]
	return terminal, ok
}

// Lookup resolves a wire identifier.
func (r *Registry) Lookup(value string) (*Terminal, bool) {
	return r.Get(ID(strings.TrimSpace(value)))
}

// All returns the terminals in display order.
func (r *Registry) All() []*Terminal {
	result := make([]*Terminal, 0, len(r.terminals))
	for _, id := range IDs() {
		result = append(result, r.terminals[id])
	}
	return result
}
