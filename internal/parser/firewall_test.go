package parser

import "testing"

const iptablesSample = `# Generated by iptables-save
*filter
:INPUT DROP [0:0]
:FORWARD DROP [0:0]
:OUTPUT ACCEPT [0:0]
-A INPUT -p tcp --dport 22 -j ACCEPT
-A INPUT -p tcp --dport 80 -j DROP
COMMIT
`

func TestParseFirewallIptables(t *testing.T) {
	cfg, err := Parse("firewall", iptablesSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := cfg.Sections["type"]["firewall_type"]; got != "iptables" {
		t.Fatalf("firewall_type = %q, want iptables", got)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"default_policy_input", "DROP"},
		{"default_policy_output", "ACCEPT"},
		{"rule_input_1", "-p tcp --dport 22 -j ACCEPT"},
		{"rule_input_1_dport", "22"},
		{"rule_input_1_target", "ACCEPT"},
		{"rule_input_2_dport", "80"},
		{"rule_input_2_target", "DROP"},
		{"table_filter_committed", "true"},
	}
	for _, tt := range tests {
		if got := cfg.FlatKeys[tt.key]; got != tt.want {
			t.Errorf("FlatKeys[%q] = %q, want %q", tt.key, got, tt.want)
		}
	}

	if _, ok := cfg.Sections["table:filter"]; !ok {
		t.Errorf("table block missing, have %v", cfg.Blocks)
	}
	if got := cfg.Sections["table:filter"]["default_policy_input"]; got != "DROP" {
		t.Errorf("chain policy not mirrored into table section: %q", got)
	}
}

func TestParseFirewallPolicyFlags(t *testing.T) {
	cfg, err := Parse("firewall", "iptables -P INPUT DROP\n-P FORWARD DROP\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.FlatKeys["default_policy_forward"]; got != "DROP" {
		t.Errorf("default_policy_forward = %q, want DROP", got)
	}
}

const nftablesSample = `table inet filter {
    chain input {
        type filter hook input priority 0;
        policy drop;
    }
}
`

func TestParseFirewallNftables(t *testing.T) {
	cfg, err := Parse("firewall", nftablesSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := cfg.Sections["type"]["firewall_type"]; got != "nftables" {
		t.Fatalf("firewall_type = %q, want nftables", got)
	}

	block := "table inet filter" + BlockSeparator + "chain input"
	if got := cfg.FlatKeys[block+BlockSeparator+"policy"]; got != "drop" {
		t.Errorf("chain policy = %q, want drop", got)
	}
	if _, ok := cfg.Sections[block]; !ok {
		t.Errorf("nested block missing, have %v", cfg.Blocks)
	}
}

func TestParseFirewallGeneric(t *testing.T) {
	cfg, err := Parse("firewall", "default_action deny\nlogging\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.Sections["type"]["firewall_type"]; got != "generic" {
		t.Fatalf("firewall_type = %q, want generic", got)
	}
	if got := cfg.FlatKeys["default_action"]; got != "deny" {
		t.Errorf("default_action = %q, want deny", got)
	}
	if got := cfg.FlatKeys["logging"]; got != "true" {
		t.Errorf("bare flag = %q, want true", got)
	}
}
