package parser

import "testing"

const sshdSample = `# sshd_config
PermitRootLogin no
MaxAuthTries 3
Ciphers aes256-ctr,aes192-ctr
Match User backup
    PasswordAuthentication yes
`

func TestParseLinuxSSHConfig(t *testing.T) {
	cfg, err := Parse("linux", sshdSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"PermitRootLogin", "no"},
		{"MaxAuthTries", "3"},
		{"Ciphers", "aes256-ctr,aes192-ctr"},
	}
	for _, tt := range tests {
		if got := cfg.FlatKeys[tt.key]; got != tt.want {
			t.Errorf("FlatKeys[%q] = %q, want %q", tt.key, got, tt.want)
		}
	}

	if _, ok := cfg.Sections["Match User backup"]; !ok {
		t.Errorf("Match block not opened, have %v", cfg.Blocks)
	}
	if got := cfg.Sections["sshd_config"]["PermitRootLogin"]; got != "no" {
		t.Errorf("section mirror = %q, want %q", got, "no")
	}
}

func TestParseLinuxEqualsAndInlineComments(t *testing.T) {
	content := "net.ipv4.ip_forward = 0 # routing off\nkernel.randomize_va_space=2\n"
	cfg, err := Parse("linux", content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.FlatKeys["net.ipv4.ip_forward"]; got != "0" {
		t.Errorf("ip_forward = %q, want %q (inline comment kept?)", got, "0")
	}
	if got := cfg.FlatKeys["kernel.randomize_va_space"]; got != "2" {
		t.Errorf("randomize_va_space = %q, want %q", got, "2")
	}
}

func TestLinuxConfigType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"sshd", "PermitRootLogin no\n", "sshd_config"},
		{"sysctl", "net.ipv4.ip_forward = 0\n", "sysctl"},
		{"login.defs", "PASS_MAX_DAYS 90\n", "login_defs"},
		{"auditd", "log_file = /var/log/audit/audit.log\n", "auditd"},
		{"generic", "SOMETHING else\n", "linux_generic"},
	}
	for _, tt := range tests {
		if got := linuxConfigType(tt.content); got != tt.want {
			t.Errorf("%s: linuxConfigType = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseLinuxAppendsConfigTypeBlock(t *testing.T) {
	cfg, err := Parse("linux", "PASS_MAX_DAYS 90\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	found := false
	for _, b := range cfg.Blocks {
		if b == "login_defs" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Blocks = %v, want login_defs entry", cfg.Blocks)
	}
}
