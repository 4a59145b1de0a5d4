package parser

import "testing"

const apacheSample = `# httpd.conf
ServerTokens Prod
ServerSignature Off
TraceEnable Off
<VirtualHost *:443>
    ServerName "www.example.com"
    SSLEngine on
    <Directory /var/www>
        AllowOverride None
        Require all granted
    </Directory>
</VirtualHost>
`

func TestParseApacheDirectives(t *testing.T) {
	cfg, err := Parse("apache", apacheSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		key  string
		want string
	}{
		{"ServerTokens", "Prod"},
		{"ServerSignature", "Off"},
		{"VirtualHost *:443" + BlockSeparator + "ServerName", "www.example.com"},
		{"VirtualHost *:443" + BlockSeparator + "SSLEngine", "on"},
		{"VirtualHost *:443" + BlockSeparator + "Directory /var/www" + BlockSeparator + "AllowOverride", "None"},
	}
	for _, tt := range tests {
		if got := cfg.FlatKeys[tt.key]; got != tt.want {
			t.Errorf("FlatKeys[%q] = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestParseApacheGlobalSection(t *testing.T) {
	cfg, err := Parse("apache", apacheSample)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.Sections["global"]["TraceEnable"]; got != "Off" {
		t.Errorf("global TraceEnable = %q, want %q", got, "Off")
	}
}

func TestParseApacheBareDirectiveDefaultsOn(t *testing.T) {
	cfg, err := Parse("apache", "FollowSymlinks\n")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.FlatKeys["FollowSymlinks"]; got != "On" {
		t.Errorf("bare directive = %q, want %q", got, "On")
	}
}

func TestParseApacheTagsClose(t *testing.T) {
	content := "<Directory />\nOptions None\n</Directory>\nServerRoot /etc/httpd\n"
	cfg, err := Parse("apache", content)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := cfg.FlatKeys["ServerRoot"]; got != "/etc/httpd" {
		t.Errorf("ServerRoot = %q, want global after tag close", got)
	}
}
