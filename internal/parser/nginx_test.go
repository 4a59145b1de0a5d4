package parser

import "testing"

const nginxSample = `# main config
worker_processes 4;
events { worker_connections 512; }
http {
    server_tokens off;
    server {
        listen 443 ssl;
        ssl_protocols TLSv1.2 TLSv1.3;
        autoindex;
    }
}
`

func TestParseNginxDirectives(t *testing.T) {
	cfg, err := Parse("nginx", nginxSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"worker_processes", "4"},
		{"http" + BlockSeparator + "server_tokens", "off"},
		{"http" + BlockSeparator + "server" + BlockSeparator + "listen", "443 ssl"},
		{"http" + BlockSeparator + "server" + BlockSeparator + "ssl_protocols", "TLSv1.2 TLSv1.3"},
	}
	for _, tt := range tests {
		if got := cfg.FlatKeys[tt.key]; got != tt.want {
			t.Errorf("FlatKeys[%q] = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestParseNginxBareDirectiveDefaultsOn(t *testing.T) {
	cfg, err := Parse("nginx", nginxSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	key := "http" + BlockSeparator + "server" + BlockSeparator + "autoindex"
	if got := cfg.FlatKeys[key]; got != "on" {
		t.Errorf("FlatKeys[%q] = %q, want %q", key, got, "on")
	}
}

func TestParseNginxInlineBlock(t *testing.T) {
	cfg, err := Parse("nginx", nginxSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.FlatKeys["events"+BlockSeparator+"worker_connections"]; got != "512" {
		t.Errorf("inline block directive = %q, want %q", got, "512")
	}
	// The inline block must not leak onto the nesting stack.
	if got := cfg.FlatKeys["http"+BlockSeparator+"server_tokens"]; got != "off" {
		t.Errorf("nesting corrupted after inline block: %v", cfg.Blocks)
	}
}

func TestParseNginxBlockPaths(t *testing.T) {
	cfg, err := Parse("nginx", nginxSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"events", "http", "http" + BlockSeparator + "server"}
	for _, b := range want {
		if _, ok := cfg.Sections[b]; !ok {
			t.Errorf("block %q missing, have %v", b, cfg.Blocks)
		}
	}
	if got := cfg.Sections["global"]["worker_processes"]; got != "4" {
		t.Errorf("global section worker_processes = %q, want %q", got, "4")
	}
}
